// File: lixenwraith/stories/type.go
package stories

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// String retrieves a string option by dot path.
// Attempts conversion from common types if the resolved value isn't already a string.
func (b *Binder) String(path string) (string, error) {
	val, found := b.Get(path)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	if val == nil {
		return "", nil // Treat nil as empty string for convenience
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Bool retrieves a boolean option by dot path.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (b *Binder) Bool(path string) (bool, error) {
	val, found := b.Get(path)
	if !found {
		return false, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is nil, cannot convert to bool", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", s, path, err)
		}
		return parsed, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
}

// Int64 retrieves an option by dot path as an int64.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (b *Binder) Int64(path string) (int64, error) {
	val, found := b.Get(path)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return toInt64(val, path)
}

// Float64 retrieves an option by dot path as a float64.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (b *Binder) Float64(path string) (float64, error) {
	val, found := b.Get(path)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return toFloat64(val, path)
}

func toInt64(val any, path string) (int64, error) {
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to int64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert unsigned integer %d (type %T) to int64 for path %s: overflow", u, val, path)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		i, err := strconv.ParseInt(s, 0, 64) // Base 0 accepts "0xFF"
		if err == nil {
			return i, nil
		}
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", s, path, err)
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", val, path)
}

func toFloat64(val any, path string) (float64, error) {
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to float64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", s, path, err)
		}
		return f, nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to float64 for path %s", val, path)
}
