// FILE: lixenwraith/stories/cmd/storyrender/main.go

// storyrender renders the markup of a stories widget from an override file.
//
// The override file (TOML, JSON, JSONC or YAML) is taken from --config or
// discovered as stories.{toml,json,jsonc,yaml,yml} in the current directory,
// $STORIES_CONFIG or the XDG config directories. Environment variables with
// the --env-prefix and option flags after "--" override the file:
//
//	storyrender --view viewer --story alice -- --avatars=false --language.unmute="Tap for sound"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/lixenwraith/stories"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string, out io.Writer) error {
	var (
		configPath string
		envPrefix  string
		view       string
		storyID    string
		logLevel   string
		dump       bool
		watch      bool
	)

	flagSet := pflag.NewFlagSet("storyrender", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "override file (default: discovered stories.toml/json/jsonc/yaml)")
	flagSet.StringVar(&envPrefix, "env-prefix", "STORIES_", "prefix of option environment variables")
	flagSet.StringVar(&view, "view", "timeline", "markup to render: timeline or viewer")
	flagSet.StringVar(&storyID, "story", "", "story rendered by the viewer (default: first story)")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flagSet.BoolVar(&dump, "dump", false, "print the resolved options as TOML instead of markup")
	flagSet.BoolVar(&watch, "watch", false, "re-render whenever the override file changes")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if view != "timeline" && view != "viewer" {
		return fmt.Errorf("invalid --view %q: want timeline or viewer", view)
	}

	builder := stories.NewBuilder().
		WithEnvPrefix(envPrefix).
		WithArgs(flagSet.Args()).
		WithLogger(logger)
	if configPath != "" {
		builder = builder.WithFile(configPath)
	} else {
		discovery := stories.DefaultDiscoveryOptions("stories")
		discovery.CLIFlag = ""
		builder = builder.WithFileDiscovery(discovery)
	}

	binder, err := builder.Build()
	if err != nil {
		if !errors.Is(err, stories.ErrConfigNotFound) {
			return err
		}
		logger.Warn("override file not found, rendering defaults", "path", configPath)
	}

	output := func() error {
		if dump {
			return binder.Dump(out)
		}
		return renderView(out, binder, view, storyID)
	}

	if err := output(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := binder.Watch()
	defer binder.StopAutoUpdate()
	if !binder.IsWatching() {
		return errors.New("--watch needs an override file")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			if path == stories.EventFileDeleted || strings.HasPrefix(path, stories.EventReloadErrorPrefix) {
				logger.Warn("override file not reloaded", "event", path)
				continue
			}
			logger.Info("option changed", "path", path)
			if err := output(); err != nil {
				return err
			}
		}
	}
}

// renderView writes the timeline of every story, or the viewer of one story
func renderView(out io.Writer, b *stories.Binder, view, storyID string) error {
	list := b.Stories()

	if view == "timeline" {
		for _, story := range list {
			fmt.Fprintln(out, b.TimelineItem(story))
			for _, item := range story.Items {
				fmt.Fprintln(out, b.TimelineStoryItem(item))
			}
		}
		return nil
	}

	story, ok := findStory(list, storyID)
	if !ok {
		return fmt.Errorf("story %q not found", storyID)
	}
	if len(story.Items) == 0 {
		return fmt.Errorf("story %q has no items", story.ID)
	}

	current := firstUnseen(story.Items)
	fmt.Fprintln(out, b.ViewerItem(story, story.Items[current]))
	for i, item := range story.Items {
		fmt.Fprintln(out, b.ViewerItemPointer(i, current, item))
	}
	for i, item := range story.Items {
		fmt.Fprintln(out, b.ViewerItemBody(i, current, item))
	}
	return nil
}

func findStory(list []stories.Story, id string) (stories.Story, bool) {
	for _, story := range list {
		if id == "" || story.ID == id {
			return story, true
		}
	}
	return stories.Story{}, false
}

// firstUnseen returns the index the viewer opens on
func firstUnseen(items []stories.Item) int {
	for i, item := range items {
		if !item.Seen {
			return i
		}
	}
	return 0
}
