// FILE: lixenwraith/stories/decode.go
package stories

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodeOverrides converts layered source data into an override tree.
// Paths absent from data stay unset.
func decodeOverrides(data map[string]any) (*Options, error) {
	result := &Options{}
	if len(data) == 0 {
		return result, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return result, nil
}

// decodeHook returns the composite decode hook for option data
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		timeToUnixHookFunc(),
		stringToUnixHookFunc(),
	)
}

// timeToUnixHookFunc converts TOML and YAML datetimes into unix seconds
func timeToUnixHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.Int64 {
			return data, nil
		}
		if ts, ok := data.(time.Time); ok {
			return ts.Unix(), nil
		}
		return data, nil
	}
}

// stringToUnixHookFunc accepts RFC3339 strings for timestamp fields.
// Plain integers are left to weak decoding; fractional numbers (json.Number
// from JSON feeds) are truncated to whole seconds like the other formats.
func stringToUnixHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int64 {
			return data, nil
		}

		str := reflect.ValueOf(data).String() // json.Number is a string kind
		if _, err := strconv.ParseInt(str, 10, 64); err == nil {
			return data, nil
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return int64(f), nil
		}

		ts, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", str, err)
		}
		return ts.Unix(), nil
	}
}
