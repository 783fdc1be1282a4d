// File: lixenwraith/stories/binder.go
package stories

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

// Binder partially applies the resolver to an override tree. The tree is the
// programmatic overrides given to Bind, overlaid by any file, environment and
// command-line layers loaded afterwards. Each reload publishes a new immutable
// snapshot; resolution always runs against one snapshot.
type Binder struct {
	overrides atomic.Pointer[Options]

	mutex          sync.RWMutex              // Protects the fields below
	base           *Options                  // Programmatic overrides
	layers         map[Source]map[string]any // Flat path -> value per source
	options        LoadOptions
	configFilePath string
	fileFormat     string
	securityOpts   *SecurityOptions
	logger         *slog.Logger
	watcher        *watcher
}

// Bind creates a Binder over overrides, which may be nil.
// The caller's tree is never modified.
func Bind(overrides *Options) *Binder {
	return newBinder(overrides, DefaultLoadOptions(), nil)
}

func newBinder(overrides *Options, opts LoadOptions, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := &Binder{
		base:       overrides,
		layers:     make(map[Source]map[string]any),
		options:    opts,
		fileFormat: "auto",
		logger:     logger,
	}
	b.overrides.Store(mergeOptions(nil, overrides))
	return b
}

// Option resolves key and subkeys against the current snapshot.
func (b *Binder) Option(key string, subkey ...string) any {
	return Resolve(b.overrides.Load(), key, subkey...)
}

// Accessor returns the resolver bound to the current snapshot. Later reloads
// do not affect the returned Accessor.
func (b *Binder) Accessor() Accessor {
	return NewResolver(b.overrides.Load())
}

// Overrides returns the current override snapshot. It must not be modified.
func (b *Binder) Overrides() *Options {
	return b.overrides.Load()
}

// Merged returns the full tree for the current snapshot.
func (b *Binder) Merged() *Options {
	return Merged(b.overrides.Load())
}

// Get retrieves a value by dot path (e.g. "language.time.ago").
// The second return value reports whether the path names an option.
func (b *Binder) Get(path string) (any, bool) {
	if _, known := optionsPaths[path]; !known {
		return nil, false
	}
	segments := splitPath(path)
	return b.Option(segments[0], segments[1:]...), true
}

// IsSet reports whether any override layer provides path.
func (b *Binder) IsSet(path string) bool {
	if _, known := optionsPaths[path]; !known {
		return false
	}
	_, ok := lookup(b.overrides.Load(), splitPath(path))
	return ok
}

// Callbacks returns the six resolved lifecycle hooks.
func (b *Binder) Callbacks() *Callbacks {
	opt := b.Accessor()
	hook := func(name string) Hook {
		h, _ := opt("callbacks", name).(Hook)
		return h
	}
	navigation := func(name string) NavigationHook {
		h, _ := opt("callbacks", name).(NavigationHook)
		return h
	}

	return &Callbacks{
		OnOpen:         hook("onOpen"),
		OnView:         hook("onView"),
		OnEnd:          hook("onEnd"),
		OnClose:        hook("onClose"),
		OnNextItem:     navigation("onNextItem"),
		OnNavigateItem: navigation("onNavigateItem"),
	}
}

// Stories returns the configured story records.
func (b *Binder) Stories() []Story {
	list, _ := b.Option("stories").([]Story)
	return list
}

// TimelineItem renders one timeline entry with the configured generator.
func (b *Binder) TimelineItem(story Story) string {
	fn, _ := b.Accessor()("template", "timelineItem").(TimelineItemFunc)
	if fn == nil {
		return ""
	}
	return fn(story)
}

// TimelineStoryItem renders one story thumbnail.
func (b *Binder) TimelineStoryItem(item Item) string {
	fn, _ := b.Accessor()("template", "timelineStoryItem").(TimelineStoryItemFunc)
	if fn == nil {
		return ""
	}
	return fn(item)
}

// ViewerItem renders the viewer chrome for story.
func (b *Binder) ViewerItem(story Story, current Item) string {
	fn, _ := b.Accessor()("template", "viewerItem").(ViewerItemFunc)
	if fn == nil {
		return ""
	}
	return fn(story, current)
}

// ViewerItemPointer renders the progress pointer of item.
func (b *Binder) ViewerItemPointer(index, current int, item Item) string {
	fn, _ := b.Accessor()("template", "viewerItemPointer").(ViewerItemPointerFunc)
	if fn == nil {
		return ""
	}
	return fn(index, current, item)
}

// ViewerItemBody renders the media body of item.
func (b *Binder) ViewerItemBody(index, current int, item Item) string {
	fn, _ := b.Accessor()("template", "viewerItemBody").(ViewerItemBodyFunc)
	if fn == nil {
		return ""
	}
	return fn(index, current, item)
}

// SetSource sets path in the given source layer and republishes the snapshot.
func (b *Binder) SetSource(source Source, path string, value any) error {
	if !isDataPath(path) {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	previous := b.layers[source]
	layer := make(map[string]any, len(previous)+1)
	for k, v := range previous {
		layer[k] = v
	}
	layer[path] = value

	return b.replaceLayer(source, layer)
}

// ResetSource clears all values of a source layer.
func (b *Binder) ResetSource(source Source) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	// Removing a layer cannot introduce an undecodable value
	_ = b.replaceLayer(source, nil)
}

// GetSources returns the value of path in every layer that sets it.
func (b *Binder) GetSources(path string) map[Source]any {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	sources := make(map[Source]any)
	for source, layer := range b.layers {
		if v, ok := layer[path]; ok {
			sources[source] = v
		}
	}
	return sources
}

// SetLoadOptions changes source precedence and republishes the snapshot.
func (b *Binder) SetLoadOptions(opts LoadOptions) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	previous := b.options
	b.options = opts
	if err := b.publish(); err != nil {
		b.options = previous
		return err
	}
	return nil
}

// replaceLayer swaps a layer and publishes, restoring the old layer on
// decode failure. Caller holds the write lock.
func (b *Binder) replaceLayer(source Source, layer map[string]any) error {
	previous, had := b.layers[source]
	if len(layer) == 0 {
		delete(b.layers, source)
	} else {
		b.layers[source] = layer
	}

	if err := b.publish(); err != nil {
		if had {
			b.layers[source] = previous
		} else {
			delete(b.layers, source)
		}
		return err
	}
	return nil
}

// publish merges the layers by precedence, decodes them and stores the new
// snapshot. Caller holds the write lock.
func (b *Binder) publish() error {
	nested := make(map[string]any)
	for i := len(b.options.Sources) - 1; i >= 0; i-- {
		source := b.options.Sources[i]
		if source == SourceDefault {
			continue
		}
		for path, value := range b.layers[source] {
			setNestedValue(nested, path, value)
		}
	}

	layered, err := decodeOverrides(nested)
	if err != nil {
		return err
	}

	b.overrides.Store(mergeOptions(b.base, layered))
	return nil
}

// snapshot flattens the data of the current override tree
func (b *Binder) snapshot() map[string]any {
	return flattenMap(toMap(reflect.ValueOf(b.overrides.Load())), "")
}

// isDataPath reports whether path names an option that sources may set
func isDataPath(path string) bool {
	p, known := optionsPaths[path]
	if !known {
		return false
	}
	return p.typ.Kind() != reflect.Func && !isOptionStruct(p.typ)
}
