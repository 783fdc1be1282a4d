// File: lixenwraith/stories/doc.go

// Package stories resolves the options of a stories widget: a timeline of
// people's stories and a full-screen viewer that plays their photo and video
// items. Every option has a default; callers override any subset.
//
// Features:
//   - Per-key resolution with per-sub-key fallback to the default tree
//   - Default markup generators that read other resolved options at render time
//   - Lifecycle hook defaults that simply continue
//   - Override layers from TOML, JSON, JSONC and YAML files, environment and CLI
//   - Thread-safe Binder with atomic snapshot publishing and file watching
//   - Relative timestamps with localizable labels
//
// Quick Start:
//
//	opt := stories.NewResolver(&stories.Options{
//		Avatars:  stories.Bool(false),
//		Language: &stories.Language{Unmute: stories.String("Tap for sound")},
//	})
//
//	opt("skin")                  // "snapgram" (default)
//	opt("language", "unmute")    // "Tap for sound"
//	opt("language", "visitLink") // "Visit link" (default sibling)
//
// Layered overrides:
//
//	b, err := stories.NewBuilder().
//		WithOverrides(overrides).
//		WithFile("stories.toml").
//		WithEnvPrefix("STORIES_").
//		Build()
//	if err != nil && !errors.Is(err, stories.ErrConfigNotFound) {
//		return err
//	}
//	html := b.TimelineItem(story)
//
// Source precedence (default): CLI > Environment > File > Overrides > Defaults
//
// Only data options (flags, strings, the story list and language strings) can
// come from files, environment or CLI. Hooks and markup generators are set
// programmatically.
package stories
