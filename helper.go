// File: lixenwraith/stories/helper.go
package stories

import (
	"reflect"
	"sort"
	"strings"
)

// tagName is the struct tag used for option keys in every source format
const tagName = "toml"

// flattenMap converts a nested map[string]any to a flat map[string]any with dot-notation paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		// Check if the value is a map that can be further flattened
		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}

		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key part.
// The same rule gates caller-supplied data attribute names.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}

// splitPath splits a dot path into its segments, ignoring a trailing dot
func splitPath(path string) []string {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// fieldKey returns the option key of a struct field.
// skip is true for unexported, "-" tagged and ",remain" fields.
func fieldKey(field reflect.StructField) (key string, skip bool) {
	if !field.IsExported() {
		return "", true
	}

	tag := field.Tag.Get(tagName)
	if tag == "-" {
		return "", true
	}

	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "remain" {
			return "", true
		}
	}
	if parts[0] != "" {
		return parts[0], false
	}
	return field.Name, false
}

// fieldByKey finds the struct field whose option key equals key
func fieldByKey(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if k, skip := fieldKey(t.Field(i)); !skip && k == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// present reports whether an option field carries a value.
// Nil pointers, funcs, slices, maps and interfaces are absent.
func present(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Slice, reflect.Map, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

// isOptionStruct reports whether t is a pointer to a nested option struct
func isOptionStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

// lookup walks an option tree along path.
// Scalar pointers are dereferenced, nested option structs are returned as pointers.
func lookup(root any, path []string) (any, bool) {
	v := reflect.ValueOf(root)
	for _, segment := range path {
		for v.IsValid() && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return nil, false
		}

		field, ok := fieldByKey(v, segment)
		if !ok {
			return nil, false
		}
		v = field
	}

	if !present(v) {
		return nil, false
	}
	if v.Kind() == reflect.Ptr && !isOptionStruct(v.Type()) {
		v = v.Elem()
	}
	return v.Interface(), true
}

// optionPath describes a recognized option path
type optionPath struct {
	typ    reflect.Type
	scalar bool // settable from env and CLI strings
}

// optionPaths returns every recognized path of t, keyed by dot path.
// Nested option structs contribute both their own path and their children.
func optionPaths(t reflect.Type) map[string]optionPath {
	paths := make(map[string]optionPath)
	collectPaths(t, "", paths)
	return paths
}

func collectPaths(t reflect.Type, prefix string, paths map[string]optionPath) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key, skip := fieldKey(field)
		if skip {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		scalar := false
		elem := field.Type
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		switch elem.Kind() {
		case reflect.Bool, reflect.String, reflect.Int, reflect.Int64, reflect.Float64:
			scalar = true
		}

		paths[path] = optionPath{typ: field.Type, scalar: scalar}

		if isOptionStruct(field.Type) {
			collectPaths(field.Type, path, paths)
		}
	}
}

// optionsPaths is the recognized path set of Options
var optionsPaths = optionPaths(reflect.TypeOf(Options{}))

// scalarPaths returns the sorted option paths that accept plain string values
func scalarPaths() []string {
	paths := make([]string, 0, len(optionsPaths))
	for path, p := range optionsPaths {
		if p.scalar {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// toMap converts the data part of an option tree into a nested map.
// Funcs and absent fields are skipped. Used for dumping and snapshots.
func toMap(v reflect.Value) map[string]any {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	result := make(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)

		if extra, ok := remainField(field, fv); ok {
			for k, val := range extra {
				result[k] = val
			}
			continue
		}

		key, skip := fieldKey(field)
		if skip || !present(fv) || fv.Kind() == reflect.Func {
			continue
		}

		switch {
		case isOptionStruct(fv.Type()):
			if sub := toMap(fv); len(sub) > 0 {
				result[key] = sub
			}
		case fv.Kind() == reflect.Ptr:
			result[key] = fv.Elem().Interface()
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Struct:
			list := make([]map[string]any, 0, fv.Len())
			for j := 0; j < fv.Len(); j++ {
				list = append(list, toMap(fv.Index(j)))
			}
			result[key] = list
		case fv.Kind() == reflect.Struct:
			result[key] = toMap(fv)
		default:
			result[key] = fv.Interface()
		}
	}

	return result
}

// remainField returns the extra-field map of a ",remain" tagged field
func remainField(field reflect.StructField, fv reflect.Value) (map[string]any, bool) {
	if !field.IsExported() || fv.Kind() != reflect.Map || fv.IsNil() {
		return nil, false
	}
	if !strings.Contains(field.Tag.Get(tagName), ",remain") {
		return nil, false
	}
	extra, ok := fv.Interface().(map[string]any)
	return extra, ok
}

// overlay copies every present field of src onto dst. Nested option structs
// present on both sides are merged recursively into fresh copies, so neither
// input tree is mutated.
func overlay(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		if _, skip := fieldKey(src.Type().Field(i)); skip {
			continue
		}

		sf := src.Field(i)
		if !present(sf) {
			continue
		}

		df := dst.Field(i)
		if isOptionStruct(sf.Type()) && present(df) {
			merged := reflect.New(df.Type().Elem())
			merged.Elem().Set(df.Elem())
			overlay(merged.Elem(), sf.Elem())
			df.Set(merged)
			continue
		}
		df.Set(sf)
	}
}

// mergeOptions returns a new tree with top overlaid on base
func mergeOptions(base, top *Options) *Options {
	merged := &Options{}
	if base != nil {
		*merged = *base
	}
	if top != nil {
		overlay(reflect.ValueOf(merged).Elem(), reflect.ValueOf(top).Elem())
	}
	return merged
}
