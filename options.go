// File: lixenwraith/stories/options.go
package stories

// Options is the override tree. Every field is optional: a nil pointer, nil
// func or nil slice means "not set" and resolution falls back to the default
// tree. Explicit false, zero and empty-string values are set values.
type Options struct {
	RTL              *bool      `toml:"rtl"`
	Skin             *string    `toml:"skin"`
	Avatars          *bool      `toml:"avatars"`
	Stories          []Story    `toml:"stories"`
	BackButton       *bool      `toml:"backButton"`
	BackNative       *bool      `toml:"backNative"`
	PaginationArrows *bool      `toml:"paginationArrows"`
	PreviousTap      *bool      `toml:"previousTap"`
	AutoFullScreen   *bool      `toml:"autoFullScreen"`
	OpenEffect       *bool      `toml:"openEffect"`
	CubeEffect       *bool      `toml:"cubeEffect"`
	List             *bool      `toml:"list"`
	LocalStorage     *bool      `toml:"localStorage"`
	Callbacks        *Callbacks `toml:"callbacks"`
	Template         *Templates `toml:"template"`
	Language         *Language  `toml:"language"`
}

// Hook is a lifecycle callback for a single story. It must call done once
// it has finished; done may be nil.
type Hook func(storyID string, done func())

// NavigationHook is a lifecycle callback fired when moving between stories.
type NavigationHook func(storyID, nextStoryID string, done func())

// Callbacks holds the player lifecycle hooks. The package never invokes them
// itself; they are resolved and handed to the player.
type Callbacks struct {
	OnOpen         Hook           `toml:"onOpen"`
	OnView         Hook           `toml:"onView"`
	OnEnd          Hook           `toml:"onEnd"`
	OnClose        Hook           `toml:"onClose"`
	OnNextItem     NavigationHook `toml:"onNextItem"`
	OnNavigateItem NavigationHook `toml:"onNavigateItem"`
}

// Markup generator signatures
type (
	TimelineItemFunc      func(story Story) string
	TimelineStoryItemFunc func(item Item) string
	ViewerItemFunc        func(story Story, current Item) string
	ViewerItemPointerFunc func(index, current int, item Item) string
	ViewerItemBodyFunc    func(index, current int, item Item) string
)

// Templates holds the markup generators.
type Templates struct {
	TimelineItem      TimelineItemFunc      `toml:"timelineItem"`
	TimelineStoryItem TimelineStoryItemFunc `toml:"timelineStoryItem"`
	ViewerItem        ViewerItemFunc        `toml:"viewerItem"`
	ViewerItemPointer ViewerItemPointerFunc `toml:"viewerItemPointer"`
	ViewerItemBody    ViewerItemBodyFunc    `toml:"viewerItemBody"`
}

// Language holds the display strings.
type Language struct {
	Unmute      *string       `toml:"unmute"`
	KeyboardTip *string       `toml:"keyboardTip"`
	VisitLink   *string       `toml:"visitLink"`
	Time        *TimeLanguage `toml:"time"`
}

// TimeLanguage holds the labels used by TimeAgo.
type TimeLanguage struct {
	Ago       *string `toml:"ago"`
	Hour      *string `toml:"hour"`
	Hours     *string `toml:"hours"`
	Minute    *string `toml:"minute"`
	Minutes   *string `toml:"minutes"`
	FromNow   *string `toml:"fromnow"`
	Seconds   *string `toml:"seconds"`
	Yesterday *string `toml:"yesterday"`
	Tomorrow  *string `toml:"tomorrow"`
	Days      *string `toml:"days"`
}

// Story is one timeline entry: an owner and the items they published.
type Story struct {
	ID             string `toml:"id"`
	Photo          string `toml:"photo"`
	Name           string `toml:"name"`
	Link           string `toml:"link"`
	LastUpdated    int64  `toml:"lastUpdated"`
	Time           int64  `toml:"time"`
	Seen           bool   `toml:"seen"`
	CurrentPreview string `toml:"currentPreview"`
	Items          []Item `toml:"items"`
}

// Item is a single photo or video inside a story. Fields the caller adds
// beyond the known ones are kept in Extra and rendered as data attributes.
type Item struct {
	ID       string         `toml:"id"`
	Type     string         `toml:"type"`
	Length   *float64       `toml:"length"`
	Src      string         `toml:"src"`
	Preview  string         `toml:"preview"`
	Link     string         `toml:"link"`
	LinkText string         `toml:"linkText"`
	Time     int64          `toml:"time"`
	Seen     bool           `toml:"seen"`
	Loop     bool           `toml:"loop"`
	Extra    map[string]any `toml:",remain"`
}

// Bool returns a pointer to v, for building override trees inline.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
