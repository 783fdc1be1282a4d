// FILE: lixenwraith/stories/cmd/storyrender/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/stories"
)

const fixture = `
avatars = false

[[stories]]
id = "alice"
name = "Alice"
photo = "alice.jpg"
currentPreview = "alice-preview.jpg"

[[stories.items]]
id = "a1"
type = "photo"
src = "a1.jpg"
preview = "a1-thumb.jpg"
seen = true

[[stories.items]]
id = "a2"
type = "video"
length = 6
src = "a2.mp4"
link = "https://example.com"

[[stories]]
id = "bob"
name = "Bob"
photo = "bob.jpg"

[[stories.items]]
id = "b1"
src = "b1.jpg"
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stories.toml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0644))
	return path
}

// TestRun tests the command end to end
func TestRun(t *testing.T) {
	path := writeFixture(t)

	t.Run("Timeline", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--config", path}, &out))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5, "two timeline entries and three thumbnails")
		assert.Contains(t, lines[0], `src="alice-preview.jpg"`)
		assert.Contains(t, lines[1], `href="a1.jpg"`)
		assert.Contains(t, lines[3], "Bob")
	})

	t.Run("TrailingOverrides", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--config", path, "--", "--avatars=true"}, &out))
		assert.Contains(t, out.String(), `src="alice.jpg"`)
	})

	t.Run("Viewer", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--config", path, "--view", "viewer", "--story", "alice"}, &out))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5, "chrome, two pointers and two bodies")
		assert.Contains(t, lines[0], `class="story-viewer"`)
		assert.Contains(t, lines[1], `class="seen"`)
		assert.Contains(t, lines[2], `class="active"`, "first unseen item is current")
		assert.Contains(t, lines[2], "animation-duration:6s")
		assert.Contains(t, lines[4], "Visit link")
	})

	t.Run("UnknownStory", func(t *testing.T) {
		err := run([]string{"--config", path, "--view", "viewer", "--story", "carol"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("Dump", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--config", path, "--dump"}, &out))
		assert.Contains(t, out.String(), "avatars = false")
		assert.Contains(t, out.String(), `skin = "snapgram"`)
	})

	t.Run("MissingFileRendersDefaults", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run([]string{"--config", filepath.Join(t.TempDir(), "absent.toml"), "--dump"}, &out))
		assert.Contains(t, out.String(), "avatars = true")
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		assert.Error(t, run([]string{"--view", "carousel"}, &bytes.Buffer{}))
		assert.Error(t, run([]string{"--log-level", "loud"}, &bytes.Buffer{}))
		assert.Error(t, run([]string{"--no-such-flag"}, &bytes.Buffer{}))
	})

	t.Run("WatchNeedsFile", func(t *testing.T) {
		err := run([]string{"--config", filepath.Join(t.TempDir(), "absent.toml"), "--watch"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

// TestFirstUnseen tests the viewer's starting item
func TestFirstUnseen(t *testing.T) {
	assert.Equal(t, 1, firstUnseen([]stories.Item{{Seen: true}, {}, {}}))
	assert.Equal(t, 0, firstUnseen([]stories.Item{{Seen: true}, {Seen: true}}))
}
