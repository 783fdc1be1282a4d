// File: lixenwraith/stories/markup.go
package stories

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// element creates an element node. Attributes with an empty key are dropped.
func element(tag string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range attrs {
		if a.Key != "" {
			n.Attr = append(n.Attr, a)
		}
	}
	return n
}

// text creates a text node; html.Render escapes its content
func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attr is shorthand for an attribute
func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// flag is a value-less attribute such as "muted"
func flag(key string) html.Attribute {
	return html.Attribute{Key: key}
}

// classAttr joins the non-empty class names
func classAttr(names ...string) html.Attribute {
	kept := names[:0:0]
	for _, name := range names {
		if name != "" {
			kept = append(kept, name)
		}
	}
	return attr("class", strings.Join(kept, " "))
}

// appendAll appends children to parent, skipping nil nodes, and returns parent
func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		if child != nil {
			parent.AppendChild(child)
		}
	}
	return parent
}

// render serializes n. A tree html.Render rejects, such as a void element
// with children, renders as "" rather than as partial markup.
func render(n *html.Node) string {
	out, err := renderNode(n)
	if err != nil {
		return ""
	}
	return out
}

func renderNode(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
