// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package twine reads Twine 2 published story files. A story file is an
// HTML page holding one tw-storydata element whose tw-passagedata children
// carry the passages; passage text is HTML-escaped inside the element.
// The types here adapt that tree to the story package interfaces.
package twine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/twison/internal/story"
)

const (
	storyElement   = "tw-storydata"
	passageElement = "tw-passagedata"
)

// ErrNoStory is returned when a document has no tw-storydata element.
var ErrNoStory = errors.New("no tw-storydata element found")

// Document is a parsed story file.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document from r. contentType, when known, names the
// charset; otherwise the charset is sniffed from the document itself.
func Parse(r io.Reader, contentType string) (*Document, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	root, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseFile opens and parses the story file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Parse(f, "")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return doc, nil
}

// Story returns the first tw-storydata element of the document.
func (d *Document) Story() (*Story, error) {
	n := findElement(d.root, storyElement)
	if n == nil {
		return nil, ErrNoStory
	}
	return &Story{node: n}, nil
}

// Story is the root story element.
type Story struct {
	node *html.Node
}

// Attr returns a story attribute such as name, ifid, format, or startnode.
func (s *Story) Attr(name string) (string, bool) {
	return attr(s.node, name)
}

// Name returns the story title.
func (s *Story) Name() string {
	v, _ := s.Attr("name")
	return v
}

// IFID returns the story's interactive fiction identifier.
func (s *Story) IFID() string {
	v, _ := s.Attr("ifid")
	return v
}

// Format returns the story format name and version, e.g. "Harlowe 3.3.8".
func (s *Story) Format() string {
	name, _ := s.Attr("format")
	version, _ := s.Attr("format-version")
	return strings.TrimSpace(name + " " + version)
}

// StartPassage returns the name of the passage whose pid matches the
// story's startnode attribute, or "" when there is none.
func (s *Story) StartPassage() string {
	start, ok := s.Attr("startnode")
	if !ok {
		return ""
	}
	for _, n := range s.passageNodes() {
		if pid, _ := attr(n, "pid"); pid == start {
			name, _ := attr(n, "name")
			return name
		}
	}
	return ""
}

// Passages returns the tw-passagedata elements in document order.
func (s *Story) Passages() []story.Node {
	nodes := s.passageNodes()
	passages := make([]story.Node, len(nodes))
	for i, n := range nodes {
		passages[i] = Passage{node: n}
	}
	return passages
}

func (s *Story) passageNodes() []*html.Node {
	var nodes []*html.Node
	walk(s.node, func(n *html.Node) bool {
		if isElement(n, passageElement) {
			nodes = append(nodes, n)
			return false
		}
		return true
	})
	return nodes
}

// Passage is one tw-passagedata element.
type Passage struct {
	node *html.Node
}

// Attr returns the named attribute. Names are matched in lower case, as the
// HTML parser stores them.
func (p Passage) Attr(name string) (string, bool) {
	return attr(p.node, name)
}

// BodyText returns the decoded text content of the element. Markup that the
// author typed into the passage arrives escaped and is returned verbatim.
func (p Passage) BodyText() string {
	var b strings.Builder
	walk(p.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, name string) (string, bool) {
	key := strings.ToLower(name)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func findElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if isElement(n, tag) {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants depth first in document order. visit
// returns false to skip the children of the node it was given.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
