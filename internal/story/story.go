// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package story converts story passages into talk_topic records. It depends
// only on the small Node and Source interfaces, so any document model that
// can hand over attributes and body text can be converted.
package story

import (
	"slices"
	"strings"

	"github.com/pdiddy/twison/internal/markup"
	"github.com/pdiddy/twison/pkg/types"
)

// Passage attribute names read from a node.
const (
	AttrName = "name"
	AttrTags = "tags"
)

// Node is one passage in a source document.
type Node interface {
	// Attr returns the named attribute and whether it is present.
	Attr(name string) (string, bool)

	// BodyText returns the passage text with any markup left as literal text.
	BodyText() string
}

// Source yields the passages of one story in document order.
type Source interface {
	Passages() []Node
}

// Options controls story conversion.
type Options struct {
	// Sentinels lists passage ids dropped from the output. Nil uses
	// types.DefaultSentinels; an empty non-nil slice drops nothing.
	Sentinels []string
}

func (o Options) sentinels() []string {
	if o.Sentinels == nil {
		return types.DefaultSentinels
	}
	return o.Sentinels
}

// extracted is a passage as read from its node, before projection. The
// body lives only here.
type extracted struct {
	name string
	tags string
	body string
}

func extract(n Node) extracted {
	var e extracted
	e.body = n.BodyText()
	if v, ok := n.Attr(AttrName); ok {
		e.name = v
	}
	if v, ok := n.Attr(AttrTags); ok {
		e.tags = v
	}
	return e
}

// ConvertPassage converts a single node into a passage record.
func ConvertPassage(n Node) types.Passage {
	return project(extract(n))
}

// project builds the public record from an extracted passage.
func project(e extracted) types.Passage {
	p := types.Passage{
		ID:          e.name,
		DynamicLine: DynamicLine(e.body),
		Responses:   markup.ExtractLinks(e.body),
		Topic:       types.TalkTopic,
	}
	if tags := strings.Fields(e.tags); len(tags) > 0 {
		p.Tags = tags
	}
	return p
}

// DynamicLine returns the body lines that precede the first line carrying a
// link, joined with newlines. A body without links is returned whole. A
// trailing carriage return is dropped from each kept line.
func DynamicLine(body string) string {
	lines := strings.Split(body, "\n")
	end := len(lines)
	for i, line := range lines {
		if markup.HasLink(line) {
			end = i
			break
		}
	}
	kept := lines[:end]
	for i, line := range kept {
		kept[i] = strings.TrimSuffix(line, "\r")
	}
	return strings.Join(kept, "\n")
}

// ConvertStory converts every passage of src in document order and drops
// the passages whose id is a sentinel. The order of the remaining
// passages is preserved.
func ConvertStory(src Source, opts Options) []types.Passage {
	sentinels := opts.sentinels()
	nodes := src.Passages()

	passages := make([]types.Passage, 0, len(nodes))
	for _, n := range nodes {
		p := ConvertPassage(n)
		if IsSentinel(p.ID, sentinels) {
			continue
		}
		passages = append(passages, p)
	}
	return passages
}

// IsSentinel reports whether id exactly matches one of sentinels.
func IsSentinel(id string, sentinels []string) bool {
	return slices.Contains(sentinels, id)
}
