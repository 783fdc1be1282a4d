// FILE: lixenwraith/stories/errors.go
package stories

import "errors"

// MaxValueSize caps a single environment or CLI value
const MaxValueSize = 1024 * 1024

var (
	// ErrConfigNotFound is returned when an override file does not exist. It is not fatal.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrCLIParse wraps command-line parsing failures
	ErrCLIParse = errors.New("failed to parse command-line arguments")

	// ErrValueSize is returned for values larger than MaxValueSize
	ErrValueSize = errors.New("value exceeds maximum size")

	// ErrUnknownPath is returned for paths that name no option
	ErrUnknownPath = errors.New("unknown option path")

	// ErrUnsupportedFormat is returned when a file format cannot be determined
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)
