// FILE: lixenwraith/stories/loader.go
package stories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Source represents a configuration source, used to define load precedence
type Source string

const (
	// SourceDefault represents the default tree
	SourceDefault Source = "default"
	// SourceFile represents values loaded from an override file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line arguments
	SourceCLI Source = "cli"
)

// EnvTransformFunc converts an option path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how override layers are loaded
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceFile, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "STORIES_" transforms "language.visitLink" to "STORIES_LANGUAGE_VISITLINK"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all)
	EnvWhitelist map[string]bool
}

// SecurityOptions restricts which override files are accepted
type SecurityOptions struct {
	PreventPathTraversal bool
	EnforceFileOwnership bool
	MaxFileSize          int64
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

// LoadWithOptions loads all layers with the given options. A missing file is
// reported as ErrConfigNotFound joined with any other non-fatal errors.
func (b *Binder) LoadWithOptions(filePath string, args []string, opts LoadOptions) error {
	b.mutex.Lock()
	b.options = opts
	b.mutex.Unlock()

	var loadErrors []error

	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceDefault:
			continue

		case SourceFile:
			if filePath == "" {
				continue
			}
			if err := b.loadFile(filePath); err != nil {
				if !errors.Is(err, ErrConfigNotFound) {
					return err
				}
				loadErrors = append(loadErrors, err)
			}

		case SourceEnv:
			if err := b.loadEnv(opts); err != nil {
				loadErrors = append(loadErrors, err)
			}

		case SourceCLI:
			if len(args) > 0 {
				if err := b.loadCLI(args); err != nil {
					loadErrors = append(loadErrors, err)
				}
			}
		}
	}

	return errors.Join(loadErrors...)
}

// LoadFile loads the file layer from an override file
func (b *Binder) LoadFile(filePath string) error {
	return b.loadFile(filePath)
}

// LoadEnv loads the environment layer using prefix
func (b *Binder) LoadEnv(prefix string) error {
	b.mutex.RLock()
	opts := b.options
	b.mutex.RUnlock()

	opts.EnvPrefix = prefix
	return b.loadEnv(opts)
}

// LoadCLI loads the command-line layer from args
func (b *Binder) LoadCLI(args []string) error {
	return b.loadCLI(args)
}

// SetFileFormat forces the file format: "toml", "json", "jsonc", "yaml" or "auto"
func (b *Binder) SetFileFormat(format string) error {
	switch format {
	case "toml", "json", "jsonc", "yaml", "auto":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	b.mutex.Lock()
	b.fileFormat = format
	b.mutex.Unlock()
	return nil
}

// SetSecurityOptions restricts subsequent file loads
func (b *Binder) SetSecurityOptions(opts SecurityOptions) {
	b.mutex.Lock()
	b.securityOpts = &opts
	b.mutex.Unlock()
}

// loadFile reads, parses and applies an override file
func (b *Binder) loadFile(path string) error {
	b.mutex.RLock()
	security := b.securityOpts
	format := b.fileFormat
	b.mutex.RUnlock()

	if security != nil && security.PreventPathTraversal {
		cleanPath := filepath.Clean(path)
		if strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) || cleanPath == ".." {
			return fmt.Errorf("potential path traversal detected in config path: %s", path)
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrConfigNotFound
		}
		return fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}

	if security != nil && security.MaxFileSize > 0 && fileInfo.Size() > security.MaxFileSize {
		return fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, security.MaxFileSize)
	}

	// File ownership check (Unix only)
	if security != nil && security.EnforceFileOwnership && runtime.GOOS != "windows" {
		if stat, ok := fileInfo.Sys().(*syscall.Stat_t); ok && stat.Uid != uint32(os.Geteuid()) {
			return fmt.Errorf("config file '%s' is not owned by current user (file UID: %d, process UID: %d)",
				path, stat.Uid, os.Geteuid())
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if security != nil && security.MaxFileSize > 0 {
		reader = io.LimitReader(file, security.MaxFileSize)
	}

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if format == "" || format == "auto" {
		format = detectFileFormat(path)
		if format == "" {
			format = detectFormatFromContent(fileData)
		}
	}

	fileConfig, err := parseFileData(format, fileData)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	layer := make(map[string]any)
	for key, value := range flattenMap(fileConfig, "") {
		if isDataPath(key) {
			layer[key] = value
		} else {
			b.logger.Debug("ignoring unknown option", "path", key, "file", path)
		}
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.replaceLayer(SourceFile, layer); err != nil {
		return fmt.Errorf("failed to apply config file '%s': %w", path, err)
	}
	b.configFilePath = path

	b.logger.Debug("override file loaded", "path", path, "format", format, "options", len(layer))
	return nil
}

// parseFileData decodes raw file content into a nested map
func parseFileData(format string, data []byte) (map[string]any, error) {
	fileConfig := make(map[string]any)

	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	case "json", "jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.UseNumber()
		if err := decoder.Decode(&fileConfig); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	return fileConfig, nil
}

// loadEnv loads the environment layer
func (b *Binder) loadEnv(opts LoadOptions) error {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	layer := make(map[string]any)
	for _, path := range scalarPaths() {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}

		if value, exists := os.LookupEnv(transform(path)); exists {
			if len(value) > MaxValueSize {
				return ErrValueSize
			}
			layer[path] = value
		}
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.replaceLayer(SourceEnv, layer); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// loadCLI loads the command-line layer
func (b *Binder) loadCLI(args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	layer := make(map[string]any)
	for path, value := range flattenMap(parsed, "") {
		p, known := optionsPaths[path]
		if !known || !p.scalar {
			b.logger.Debug("ignoring unknown command-line option", "path", path)
			continue
		}
		layer[path] = value
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.replaceLayer(SourceCLI, layer); err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	return nil
}

// DiscoverEnv returns path -> variable name for every option set in the environment
func (b *Binder) DiscoverEnv(prefix string) map[string]string {
	b.mutex.RLock()
	transform := b.options.EnvTransform
	b.mutex.RUnlock()

	if transform == nil {
		transform = defaultEnvTransform(prefix)
	}

	discovered := make(map[string]string)
	for _, path := range scalarPaths() {
		envVar := transform(path)
		if _, exists := os.LookupEnv(envVar); exists {
			discovered[path] = envVar
		}
	}
	return discovered
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// parseArgs processes command-line arguments into a nested map structure.
// Accepts "--key.sub=value", "--key.sub value" and "--flag" (true).
// Values stay strings; decoding converts them.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath, valueStr string
		if key, value, hasValue := strings.Cut(argContent, "="); hasValue {
			keyPath = key
			valueStr = value
			i++
		} else {
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			// Skip invalid flags like --=value
			continue
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		if len(valueStr) > MaxValueSize {
			return nil, ErrValueSize
		}

		setNestedValue(result, keyPath, valueStr)
	}

	return result, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".jsonc":
		return "jsonc"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML: most TOML documents are not valid YAML, but a bare
	// word is valid YAML
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
