// File: lixenwraith/stories/builder.go
package stories

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ValidatorFunc validates a fully loaded Binder
type ValidatorFunc func(b *Binder) error

// Builder provides a fluent interface for building a Binder
type Builder struct {
	overrides  *Options
	opts       LoadOptions
	file       string
	fileFormat string
	args       []string
	security   *SecurityOptions
	logger     *slog.Logger
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new Binder builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithOverrides sets the programmatic override tree, which sits directly
// above the defaults and below file, env and CLI layers
func (b *Builder) WithOverrides(overrides *Options) *Builder {
	b.overrides = overrides
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the override file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileFormat forces the override file format
func (b *Builder) WithFileFormat(format string) *Builder {
	switch format {
	case "toml", "json", "jsonc", "yaml", "auto":
		b.fileFormat = format
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order for override sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithSecurityOptions restricts which override files are accepted
func (b *Builder) WithSecurityOptions(opts SecurityOptions) *Builder {
	b.security = &opts
	return b
}

// WithLogger sets the structured logger; the default discards
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Binder with all specified options.
// A missing override file is returned as ErrConfigNotFound alongside a usable Binder.
func (b *Builder) Build() (*Binder, error) {
	if b.err != nil {
		return nil, b.err
	}

	binder := newBinder(b.overrides, b.opts, b.logger)
	if b.security != nil {
		binder.SetSecurityOptions(*b.security)
	}
	if b.fileFormat != "" {
		if err := binder.SetFileFormat(b.fileFormat); err != nil {
			return nil, err
		}
	}

	loadErr := binder.LoadWithOptions(b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		return nil, loadErr
	}

	for _, validator := range b.validators {
		if err := validator(binder); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return binder, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Binder {
	binder, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("stories build failed: %v", err))
	}
	return binder
}
