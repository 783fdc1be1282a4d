// FILE: lixenwraith/stories/binder_test.go
package stories

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBinder tests the bound accessor and its typed getters
func TestBinder(t *testing.T) {
	t.Run("BindNil", func(t *testing.T) {
		b := Bind(nil)
		assert.Equal(t, "snapgram", b.Option("skin"))
		assert.Equal(t, "Visit link", b.Option("language", "visitLink"))
		assert.NotNil(t, b.Overrides())
		assert.Empty(t, b.Stories())
	})

	t.Run("MatchesResolve", func(t *testing.T) {
		o := &Options{Skin: String("dark"), Language: &Language{Unmute: String("Tap")}}
		b := Bind(o)

		for _, key := range []string{"skin", "avatars", "rtl", "stories"} {
			assert.Equal(t, Resolve(o, key), b.Option(key), key)
		}
		assert.Equal(t, "Tap", b.Option("language", "unmute"))
		assert.Equal(t, "Touch to unmute", Resolve(nil, "language", "unmute"))
	})

	t.Run("CallerTreeCopied", func(t *testing.T) {
		o := &Options{Skin: String("dark")}
		b := Bind(o)
		o.Skin = String("changed")
		o.Avatars = Bool(false)

		assert.Equal(t, "dark", b.Option("skin"))
		assert.Equal(t, true, b.Option("avatars"))
	})

	t.Run("GetAndIsSet", func(t *testing.T) {
		b := Bind(&Options{Skin: String("dark")})

		val, ok := b.Get("skin")
		assert.True(t, ok)
		assert.Equal(t, "dark", val)

		val, ok = b.Get("language.time.ago")
		assert.True(t, ok)
		assert.Equal(t, "ago", val)

		_, ok = b.Get("nonexistent")
		assert.False(t, ok)

		assert.True(t, b.IsSet("skin"))
		assert.False(t, b.IsSet("avatars"))
		assert.False(t, b.IsSet("nonexistent"))
	})

	t.Run("TypedGetters", func(t *testing.T) {
		b := Bind(&Options{BackButton: Bool(false)})

		skin, err := b.String("skin")
		require.NoError(t, err)
		assert.Equal(t, "snapgram", skin)

		avatars, err := b.Bool("avatars")
		require.NoError(t, err)
		assert.True(t, avatars)

		back, err := b.Bool("backButton")
		require.NoError(t, err)
		assert.False(t, back)

		unmute, err := b.String("language.unmute")
		require.NoError(t, err)
		assert.Equal(t, "Touch to unmute", unmute)

		_, err = b.String("nonexistent")
		assert.ErrorIs(t, err, ErrUnknownPath)

		_, err = b.Bool("skin")
		assert.Error(t, err)
	})

	t.Run("NumericGetters", func(t *testing.T) {
		b := Bind(&Options{Skin: String("42"), RTL: Bool(true)})

		i, err := b.Int64("skin")
		require.NoError(t, err)
		assert.Equal(t, int64(42), i)

		f, err := b.Float64("skin")
		require.NoError(t, err)
		assert.Equal(t, 42.0, f)

		i, err = b.Int64("rtl")
		require.NoError(t, err)
		assert.Equal(t, int64(1), i)

		f, err = b.Float64("avatars")
		require.NoError(t, err)
		assert.Equal(t, 1.0, f)

		require.NoError(t, b.SetSource(SourceCLI, "skin", "2.75"))
		i, err = b.Int64("skin")
		require.NoError(t, err)
		assert.Equal(t, int64(2), i, "fractional strings truncate")

		require.NoError(t, b.SetSource(SourceCLI, "skin", "0x1F"))
		i, err = b.Int64("skin")
		require.NoError(t, err)
		assert.Equal(t, int64(31), i)

		_, err = b.Int64("language.unmute")
		assert.Error(t, err)
		_, err = b.Float64("language.unmute")
		assert.Error(t, err)

		_, err = b.Int64("nonexistent")
		assert.ErrorIs(t, err, ErrUnknownPath)
		_, err = b.Float64("nonexistent")
		assert.ErrorIs(t, err, ErrUnknownPath)
	})

	t.Run("NumericConversions", func(t *testing.T) {
		_, err := toInt64(uint64(math.MaxUint64), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overflow")

		i, err := toInt64(uint32(7), "x")
		require.NoError(t, err)
		assert.Equal(t, int64(7), i)

		i, err = toInt64(-3.9, "x")
		require.NoError(t, err)
		assert.Equal(t, int64(-3), i)

		f, err := toFloat64(int64(-5), "x")
		require.NoError(t, err)
		assert.Equal(t, -5.0, f)

		_, err = toInt64(nil, "x")
		assert.Error(t, err)
		_, err = toFloat64([]Story{}, "x")
		assert.Error(t, err)
	})

	t.Run("AccessorIsSnapshot", func(t *testing.T) {
		b := Bind(nil)
		acc := b.Accessor()

		require.NoError(t, b.SetSource(SourceCLI, "skin", "neon"))
		assert.Equal(t, "snapgram", acc("skin"))
		assert.Equal(t, "neon", b.Accessor()("skin"))
	})

	t.Run("CallbacksResolved", func(t *testing.T) {
		opened := ""
		b := Bind(&Options{Callbacks: &Callbacks{
			OnOpen: func(storyID string, done func()) { opened = storyID },
		}})

		cb := b.Callbacks()
		require.NotNil(t, cb.OnOpen)
		cb.OnOpen("alice", nil)
		assert.Equal(t, "alice", opened)

		for _, hook := range []Hook{cb.OnView, cb.OnEnd, cb.OnClose} {
			require.NotNil(t, hook)
			calls := 0
			hook("alice", func() { calls++ })
			assert.Equal(t, 1, calls)
		}
		assert.NotNil(t, cb.OnNextItem)
		assert.NotNil(t, cb.OnNavigateItem)
	})

	t.Run("RenderHelpers", func(t *testing.T) {
		b := Bind(&Options{
			Avatars:  Bool(false),
			Template: &Templates{ViewerItemPointer: func(index, current int, item Item) string { return "pointer:" + item.ID }},
		})

		story := Story{ID: "alice", Photo: "p.jpg", CurrentPreview: "c.jpg", Items: []Item{{ID: "a1", Src: "a1.jpg"}}}
		assert.Contains(t, b.TimelineItem(story), `src="c.jpg"`)
		assert.Contains(t, b.TimelineStoryItem(story.Items[0]), `href="a1.jpg"`)
		assert.Contains(t, b.ViewerItem(story, story.Items[0]), `class="story-viewer"`)
		assert.Equal(t, "pointer:a1", b.ViewerItemPointer(0, 0, story.Items[0]))
		assert.Contains(t, b.ViewerItemBody(0, 0, story.Items[0]), `src="a1.jpg"`)
	})
}

// TestBinderSources tests layered sources on a Binder
func TestBinderSources(t *testing.T) {
	t.Run("Precedence", func(t *testing.T) {
		b := Bind(&Options{Skin: String("programmatic")})
		assert.Equal(t, "programmatic", b.Option("skin"))

		require.NoError(t, b.SetSource(SourceFile, "skin", "file"))
		assert.Equal(t, "file", b.Option("skin"))

		require.NoError(t, b.SetSource(SourceEnv, "skin", "env"))
		assert.Equal(t, "env", b.Option("skin"))

		require.NoError(t, b.SetSource(SourceCLI, "skin", "cli"))
		assert.Equal(t, "cli", b.Option("skin"))

		sources := b.GetSources("skin")
		assert.Equal(t, "file", sources[SourceFile])
		assert.Equal(t, "env", sources[SourceEnv])
		assert.Equal(t, "cli", sources[SourceCLI])

		b.ResetSource(SourceCLI)
		assert.Equal(t, "env", b.Option("skin"))
		b.ResetSource(SourceEnv)
		b.ResetSource(SourceFile)
		assert.Equal(t, "programmatic", b.Option("skin"))
	})

	t.Run("NestedPathKeepsSiblings", func(t *testing.T) {
		b := Bind(&Options{Language: &Language{Unmute: String("Tap")}})
		require.NoError(t, b.SetSource(SourceEnv, "language.visitLink", "Open"))

		assert.Equal(t, "Tap", b.Option("language", "unmute"))
		assert.Equal(t, "Open", b.Option("language", "visitLink"))
		assert.Equal(t, "Press space to see next", b.Option("language", "keyboardTip"))
	})

	t.Run("WeakStringValues", func(t *testing.T) {
		b := Bind(nil)
		require.NoError(t, b.SetSource(SourceEnv, "avatars", "false"))
		require.NoError(t, b.SetSource(SourceEnv, "rtl", "1"))

		assert.Equal(t, false, b.Option("avatars"))
		assert.Equal(t, true, b.Option("rtl"))
	})

	t.Run("RejectsNonDataPaths", func(t *testing.T) {
		b := Bind(nil)
		assert.ErrorIs(t, b.SetSource(SourceCLI, "nonexistent", "x"), ErrUnknownPath)
		assert.ErrorIs(t, b.SetSource(SourceCLI, "template.timelineItem", "x"), ErrUnknownPath)
		assert.ErrorIs(t, b.SetSource(SourceCLI, "callbacks.onOpen", "x"), ErrUnknownPath)
		assert.ErrorIs(t, b.SetSource(SourceCLI, "language", "x"), ErrUnknownPath)
	})

	t.Run("BadValueRollsBack", func(t *testing.T) {
		b := Bind(nil)
		require.NoError(t, b.SetSource(SourceCLI, "skin", "kept"))

		err := b.SetSource(SourceCLI, "avatars", "definitely-not-a-bool")
		assert.Error(t, err)

		assert.Equal(t, true, b.Option("avatars"))
		assert.Equal(t, "kept", b.Option("skin"))
		_, set := b.GetSources("avatars")[SourceCLI]
		assert.False(t, set)
	})

	t.Run("StoryList", func(t *testing.T) {
		b := Bind(nil)
		require.NoError(t, b.SetSource(SourceFile, "stories", []any{
			map[string]any{
				"id":   "alice",
				"name": "Alice",
				"items": []any{
					map[string]any{"id": "a1", "length": 4, "custom": "x"},
				},
			},
		}))

		list := b.Stories()
		require.Len(t, list, 1)
		assert.Equal(t, "Alice", list[0].Name)
		require.Len(t, list[0].Items, 1)
		require.NotNil(t, list[0].Items[0].Length)
		assert.Equal(t, 4.0, *list[0].Items[0].Length)
		assert.Equal(t, "x", list[0].Items[0].Extra["custom"])
	})

	t.Run("SetLoadOptions", func(t *testing.T) {
		b := Bind(nil)
		require.NoError(t, b.SetSource(SourceFile, "skin", "file"))
		require.NoError(t, b.SetSource(SourceCLI, "skin", "cli"))
		assert.Equal(t, "cli", b.Option("skin"))

		require.NoError(t, b.SetLoadOptions(LoadOptions{
			Sources: []Source{SourceFile, SourceCLI, SourceDefault},
		}))
		assert.Equal(t, "file", b.Option("skin"))
	})

	t.Run("Validate", func(t *testing.T) {
		b := Bind(nil)
		err := b.Validate("skin", "language.unmute")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skin")

		require.NoError(t, b.SetSource(SourceEnv, "skin", "dark"))
		require.NoError(t, b.SetSource(SourceEnv, "language.unmute", "Tap"))
		assert.NoError(t, b.Validate("skin", "language.unmute"))

		err = b.Validate("bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus (unknown)")
	})
}

// TestBinderConcurrency tests concurrent reads during source updates
func TestBinderConcurrency(t *testing.T) {
	b := Bind(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.SetSource(SourceCLI, "skin", fmt.Sprintf("skin-%d-%d", i, j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				skin, _ := b.Option("skin").(string)
				assert.NotEmpty(t, skin)
				_ = b.TimelineItem(Story{ID: "alice"})
			}
		}()
	}
	wg.Wait()

	skin, err := b.String("skin")
	require.NoError(t, err)
	assert.Contains(t, skin, "skin-")
}
