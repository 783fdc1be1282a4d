// File: lixenwraith/stories/convenience.go
package stories

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Quick builds a Binder from overrides, the environment (envPrefix), an
// optional override file and os.Args with the standard precedence
// CLI > Env > File > overrides > defaults.
func Quick(overrides *Options, envPrefix, configFile string) (*Binder, error) {
	return NewBuilder().
		WithOverrides(overrides).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		Build()
}

// MustQuick is like Quick but panics on error other than a missing file
func MustQuick(overrides *Options, envPrefix, configFile string) *Binder {
	return NewBuilder().
		WithOverrides(overrides).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		MustBuild()
}

// Validate checks that every required path is set by some override layer
func (b *Binder) Validate(required ...string) error {
	var missing []string

	for _, path := range required {
		if _, known := optionsPaths[path]; !known {
			missing = append(missing, path+" (unknown)")
			continue
		}
		if !b.IsSet(path) {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted listing of the resolved data options and the
// layers that set them
func (b *Binder) Debug() string {
	merged := flattenMap(toMap(reflect.ValueOf(b.Merged())), "")

	paths := make([]string, 0, len(merged))
	for path := range merged {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	b.mutex.RLock()
	sources := b.options.Sources
	b.mutex.RUnlock()

	var sb strings.Builder
	sb.WriteString("Stories Configuration:\n")
	sb.WriteString(fmt.Sprintf("Precedence: %v\n", sources))

	for _, path := range paths {
		sb.WriteString(fmt.Sprintf("  %s: %v", path, merged[path]))
		if !b.IsSet(path) {
			sb.WriteString(" (default)")
		}
		sb.WriteString("\n")

		layerValues := b.GetSources(path)
		for _, source := range sources {
			if value, ok := layerValues[source]; ok {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", source, value))
			}
		}
	}

	return sb.String()
}

// Dump writes the resolved data options to w in TOML format
func (b *Binder) Dump(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	return encoder.Encode(toMap(reflect.ValueOf(b.Merged())))
}

// Save writes the resolved data options to a TOML file atomically
func (b *Binder) Save(path string) error {
	var buf bytes.Buffer
	if err := b.Dump(&buf); err != nil {
		return fmt.Errorf("failed to marshal options to TOML: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile writes data through a temporary file and a rename
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // No-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
