// File: lixenwraith/stories/defaults.go
package stories

// Defaults builds the complete default tree. The template generators close
// over opt and query it at render time, so defaults can depend on other
// resolved keys. A key's default never queries that same key.
// A nil opt resolves against an empty override tree.
func Defaults(opt Accessor) *Options {
	if opt == nil {
		opt = NewResolver(nil)
	}

	return &Options{
		RTL:              Bool(false),
		Skin:             String("snapgram"),
		Avatars:          Bool(true),
		Stories:          []Story{},
		BackButton:       Bool(true),
		BackNative:       Bool(false),
		PaginationArrows: Bool(false),
		PreviousTap:      Bool(true),
		AutoFullScreen:   Bool(false),
		OpenEffect:       Bool(true),
		CubeEffect:       Bool(false),
		List:             Bool(false),
		LocalStorage:     Bool(true),
		Callbacks:        defaultCallbacks(),
		Template:         defaultTemplates(opt),
		Language:         defaultLanguage(),
	}
}

// continueWith calls done if the caller supplied one
func continueWith(done func()) {
	if done != nil {
		done()
	}
}

func defaultCallbacks() *Callbacks {
	return &Callbacks{
		OnOpen:         func(storyID string, done func()) { continueWith(done) },
		OnView:         func(storyID string, done func()) { continueWith(done) },
		OnEnd:          func(storyID string, done func()) { continueWith(done) },
		OnClose:        func(storyID string, done func()) { continueWith(done) },
		OnNextItem:     func(storyID, nextStoryID string, done func()) { continueWith(done) },
		OnNavigateItem: func(storyID, nextStoryID string, done func()) { continueWith(done) },
	}
}

func defaultTemplates(opt Accessor) *Templates {
	return &Templates{
		TimelineItem: func(story Story) string {
			return renderTimelineItem(opt, story)
		},
		TimelineStoryItem: func(item Item) string {
			return renderTimelineStoryItem(item)
		},
		ViewerItem: func(story Story, current Item) string {
			return renderViewerItem(opt, story, current)
		},
		ViewerItemPointer: func(index, current int, item Item) string {
			return renderViewerItemPointer(index, current, item)
		},
		ViewerItemBody: func(index, current int, item Item) string {
			return renderViewerItemBody(opt, index, current, item)
		},
	}
}

func defaultLanguage() *Language {
	return &Language{
		Unmute:      String("Touch to unmute"),
		KeyboardTip: String("Press space to see next"),
		VisitLink:   String("Visit link"),
		Time: &TimeLanguage{
			Ago:       String("ago"),
			Hour:      String("hour ago"),
			Hours:     String("hours ago"),
			Minute:    String("minute ago"),
			Minutes:   String("minutes ago"),
			FromNow:   String("from now"),
			Seconds:   String("seconds ago"),
			Yesterday: String("yesterday"),
			Tomorrow:  String("tomorrow"),
			Days:      String("days ago"),
		},
	}
}
