// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markup

import (
	"strings"

	"github.com/pdiddy/twison/pkg/types"
)

// Property keys that select how a line's properties attach to a response.
const (
	keyEffect    = "effect"
	keyCondition = "condition"
)

// ExtractLinks returns one response per link marker in text, in line then
// column order, or nil when text has no marker.
//
// Text and properties are computed per line, not per marker: every
// response on a line sees the properties of the whole line, and its text
// is the line with only its own marker removed.
func ExtractLinks(text string) []types.Response {
	var responses []types.Response
	for _, line := range strings.Split(text, "\n") {
		markers := Markers(line)
		if len(markers) == 0 {
			continue
		}

		props := ExtractProperties(line)
		for _, m := range markers {
			rest := strings.TrimSpace(strings.Replace(line, m.Raw(line), "", 1))
			r := types.Response{
				Topic: m.Topic,
				Text:  strings.TrimSpace(StripProperties(rest)),
			}
			attachProperties(&r, props)
			responses = append(responses, r)
		}
	}
	return responses
}

// attachProperties sets exactly one of Effect, Condition, or Prop, in that
// order of preference, when props is non-nil.
func attachProperties(r *types.Response, props *types.Properties) {
	if props == nil {
		return
	}
	if v, ok := props.Get(keyEffect); ok {
		r.Effect = &v
		return
	}
	if v, ok := props.Get(keyCondition); ok {
		r.Condition = &v
		return
	}
	r.Prop = props
}

// LinkTarget resolves the passage a link topic points at using the Twine
// link forms "text->target", "target<-text" and "text|target". A topic in
// none of these forms is its own target.
func LinkTarget(topic string) string {
	if i := strings.LastIndex(topic, "->"); i >= 0 {
		return strings.TrimSpace(topic[i+len("->"):])
	}
	if i := strings.Index(topic, "<-"); i >= 0 {
		return strings.TrimSpace(topic[:i])
	}
	if i := strings.LastIndex(topic, "|"); i >= 0 {
		return strings.TrimSpace(topic[i+1:])
	}
	return strings.TrimSpace(topic)
}
