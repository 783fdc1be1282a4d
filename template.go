// File: lixenwraith/stories/template.go
package stories

import (
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/net/html"
)

// reservedItemKeys are always emitted as data attributes, in this order,
// after the caller's extra fields
var reservedItemKeys = []string{
	"id", "seen", "src", "link", "linkText", "loop", "time", "type", "length", "preview",
}

// defaultLength is the pointer animation duration in seconds for items
// without a usable length
const defaultLength = "3"

func isReservedItemKey(key string) bool {
	for _, k := range reservedItemKeys {
		if k == key {
			return true
		}
	}
	return false
}

// reservedValue returns the attribute value of a reserved item field.
// Unset strings and numbers render as ""; seen and loop always render
// true or false.
func (item Item) reservedValue(key string) string {
	switch key {
	case "id":
		return item.ID
	case "seen":
		return strconv.FormatBool(item.Seen)
	case "src":
		return item.Src
	case "link":
		return item.Link
	case "linkText":
		return item.LinkText
	case "loop":
		return strconv.FormatBool(item.Loop)
	case "time":
		return formatTimestamp(item.Time)
	case "type":
		return item.Type
	case "length":
		if item.Length == nil {
			return ""
		}
		return formatNumber(*item.Length)
	case "preview":
		return item.Preview
	}
	return ""
}

func formatTimestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return strconv.FormatInt(ts, 10)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func seenClass(seen bool) string {
	if seen {
		return "seen"
	}
	return ""
}

func activeClass(index, current int) string {
	if index == current {
		return "active"
	}
	return ""
}

// languageOf returns the resolved language tree; nil when unset or malformed
func languageOf(opt Accessor) *Language {
	lang, _ := opt("language").(*Language)
	return lang
}

func renderTimelineItem(opt Accessor, story Story) string {
	src := story.Photo
	if !opt.Flag("avatars") && story.CurrentPreview != "" {
		src = story.CurrentPreview
	}

	link := element("a", classAttr("item-link"))
	if story.Link != "" {
		link.Attr = append(link.Attr, attr("href", story.Link))
	}

	preview := appendAll(element("span", classAttr("item-preview")),
		element("img", attr("lazy", "eager"), attr("src", src)),
	)

	info := appendAll(
		element("span",
			classAttr("info"),
			attr("itemprop", "author"),
			flag("itemscope"),
			attr("itemtype", "http://schema.org/Person"),
		),
		appendAll(element("strong", classAttr("name"), attr("itemprop", "name")), text(story.Name)),
		appendAll(element("span", classAttr("time")), text(TimeAgo(story.LastUpdated, languageOf(opt)))),
	)

	root := appendAll(element("div", classAttr("story", seenClass(story.Seen))),
		appendAll(link, preview, info),
		element("ul", classAttr("items")),
	)
	return render(root)
}

func renderTimelineStoryItem(item Item) string {
	attrs := []html.Attribute{attr("href", item.Src)}

	extraKeys := make([]string, 0, len(item.Extra))
	for key := range item.Extra {
		if isReservedItemKey(key) || !isValidKeySegment(key) {
			continue
		}
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)

	for _, key := range extraKeys {
		attrs = append(attrs, attr("data-"+key, extraValue(item.Extra[key])))
	}
	for _, key := range reservedItemKeys {
		attrs = append(attrs, attr("data-"+key, item.reservedValue(key)))
	}

	root := appendAll(element("a", attrs...),
		element("img", attr("loading", "auto"), attr("src", item.Preview)),
	)
	return render(root)
}

func extraValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func renderViewerItem(opt Accessor, story Story, current Item) string {
	lang := languageOf(opt)

	left := element("div", classAttr("left"))
	if opt.Flag("backButton") {
		appendAll(left, appendAll(element("a", classAttr("back")), text("‹")))
	}
	appendAll(left,
		appendAll(element("span", classAttr("item-preview")),
			element("img", attr("lazy", "eager"), classAttr("profilePhoto"), attr("src", story.Photo)),
		),
		appendAll(element("div", classAttr("info")),
			appendAll(element("strong", classAttr("name")), text(story.Name)),
			appendAll(element("span", classAttr("time")), text(TimeAgo(story.Time, lang))),
		),
	)

	right := appendAll(element("div", classAttr("right")),
		appendAll(element("span", classAttr("time")), text(TimeAgo(current.Time, lang))),
		element("span", classAttr("loading")),
		appendAll(element("a", classAttr("close"), attr("tabindex", "2")), text("×")),
	)

	root := appendAll(element("div", classAttr("story-viewer")),
		appendAll(element("div", classAttr("head")), left, right),
		appendAll(element("div", classAttr("slides-pointers")), element("div", classAttr("wrap"))),
	)

	if opt.Flag("paginationArrows") {
		appendAll(root, appendAll(element("div", classAttr("slides-pagination")),
			appendAll(element("span", classAttr("previous")), text("‹")),
			appendAll(element("span", classAttr("next")), text("›")),
		))
	}

	return render(root)
}

func renderViewerItemPointer(index, current int, item Item) string {
	length := defaultLength
	if item.Length != nil && SafeNum(*item.Length) {
		length = formatNumber(*item.Length)
	}

	root := appendAll(
		element("span",
			classAttr(activeClass(index, current), seenClass(item.Seen)),
			attr("data-index", strconv.Itoa(index)),
			attr("data-item-id", item.ID),
		),
		element("b", attr("style", "animation-duration:"+length+"s")),
	)
	return render(root)
}

func renderViewerItemBody(opt Accessor, index, current int, item Item) string {
	root := element("div",
		classAttr("item", seenClass(item.Seen), activeClass(index, current)),
		attr("data-time", formatTimestamp(item.Time)),
		attr("data-type", item.Type),
		attr("data-index", strconv.Itoa(index)),
		attr("data-item-id", item.ID),
	)

	// The item type is also emitted as a bare attribute on the media element
	typeAttr := html.Attribute{}
	if isValidKeySegment(item.Type) {
		typeAttr = flag(item.Type)
	}

	if item.Type == "video" {
		length := ""
		if item.Length != nil {
			length = formatNumber(*item.Length)
		}
		video := element("video", classAttr("media"), attr("data-length", length))
		if item.Loop {
			video.Attr = append(video.Attr, flag("loop"))
		}
		video.Attr = append(video.Attr,
			flag("muted"),
			flag("webkit-playsinline"),
			flag("playsinline"),
			attr("preload", "auto"),
			attr("src", item.Src),
		)
		if typeAttr.Key != "" {
			video.Attr = append(video.Attr, typeAttr)
		}

		appendAll(root,
			video,
			appendAll(element("b", classAttr("tip", "muted")), text(opt.Text("language", "unmute"))),
		)
	} else {
		appendAll(root, element("img",
			attr("loading", "auto"),
			classAttr("media"),
			attr("src", item.Src),
			typeAttr,
		))
	}

	if item.Link != "" {
		label := item.LinkText
		if label == "" {
			label = opt.Text("language", "visitLink")
		}
		appendAll(root, appendAll(
			element("a",
				classAttr("tip", "link"),
				attr("href", item.Link),
				attr("rel", "noopener"),
				attr("target", "_blank"),
			),
			text(label),
		))
	}

	return render(root)
}
