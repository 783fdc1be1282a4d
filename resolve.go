// File: lixenwraith/stories/resolve.go
package stories

import "fmt"

// Accessor resolves an option key, optionally narrowed by sub-keys, against a
// fixed override tree. Unknown keys resolve to nil.
type Accessor func(key string, subkey ...string) any

// Flag resolves key and reports its truthiness
func (a Accessor) Flag(key string, subkey ...string) bool {
	return Truthy(a(key, subkey...))
}

// Text resolves key and formats it as a string; nil becomes ""
func (a Accessor) Text(key string, subkey ...string) string {
	switch v := a(key, subkey...).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Resolve returns the value of key (and subkey) from overrides, falling back
// to the default tree. Each sub-key falls back individually: a partially
// specified override object never hides its sibling defaults.
// With an empty key, Resolve returns the curried Accessor itself.
//
// The default tree is rebuilt on every call, so default funcs are not
// identity-stable between calls.
func Resolve(overrides *Options, key string, subkey ...string) any {
	var self Accessor
	self = func(key string, subkey ...string) any {
		return resolve(overrides, self, key, subkey)
	}

	if key == "" {
		return self
	}
	return self(key, subkey...)
}

// NewResolver returns the Accessor bound to overrides.
func NewResolver(overrides *Options) Accessor {
	return Resolve(overrides, "").(Accessor)
}

// Merged returns the full tree: overrides overlaid field by field on the
// defaults. Neither input is mutated.
func Merged(overrides *Options) *Options {
	return mergeOptions(Defaults(NewResolver(overrides)), overrides)
}

func resolve(overrides *Options, self Accessor, key string, subkey []string) any {
	path := make([]string, 0, len(subkey)+1)
	path = append(path, key)
	path = append(path, subkey...)

	if overrides != nil {
		if value, ok := lookup(overrides, path); ok {
			return value
		}
	}

	value, _ := lookup(Defaults(self), path)
	return value
}
