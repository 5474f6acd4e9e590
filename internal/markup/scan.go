// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup scans passage text for the two inline constructs a story
// author writes: [[...]] link markers and {{key}}...{{/key}} property
// blocks. Both scanners are hand-written, non-greedy, and never fail:
// anything that does not match is left as literal text.
package markup

import "strings"

const (
	linkOpen   = "[["
	linkClose  = "]]"
	blockOpen  = "{{"
	blockClose = "}}"
)

// Marker is one [[...]] link reference found on a line. Start and End are
// byte columns: Start points at the opening brackets and End is one past
// the closing brackets.
type Marker struct {
	Start int
	End   int
	Topic string
}

// Raw returns the marker text including its brackets.
func (m Marker) Raw(line string) string {
	return line[m.Start:m.End]
}

// Markers returns the link markers on line from left to right. Each marker
// closes at the first "]]" after its opening brackets.
func Markers(line string) []Marker {
	var markers []Marker
	pos := 0
	for pos < len(line) {
		i := strings.Index(line[pos:], linkOpen)
		if i < 0 {
			break
		}
		start := pos + i
		inner := start + len(linkOpen)
		j := strings.Index(line[inner:], linkClose)
		if j < 0 {
			// No later marker can close either.
			break
		}
		end := inner + j + len(linkClose)
		markers = append(markers, Marker{
			Start: start,
			End:   end,
			Topic: line[inner : inner+j],
		})
		pos = end
	}
	return markers
}

// HasLink reports whether line contains at least one link marker.
func HasLink(line string) bool {
	i := strings.Index(line, linkOpen)
	if i < 0 {
		return false
	}
	return strings.Contains(line[i+len(linkOpen):], linkClose)
}

// block is one matched property block. start and end bound the whole
// block including both tags; content is the raw text between the tags.
type block struct {
	start   int
	end     int
	key     string
	content string
}

// nextBlock returns the first property block that starts at or after pos.
// An open tag whose key never closes is skipped one byte at a time, so a
// later open tag can still match.
func nextBlock(text string, pos int) (block, bool) {
	for pos < len(text) {
		i := strings.Index(text[pos:], blockOpen)
		if i < 0 {
			return block{}, false
		}
		start := pos + i
		if b, ok := matchBlock(text, start); ok {
			return b, true
		}
		pos = start + 1
	}
	return block{}, false
}

// matchBlock tries to match a block whose open tag begins at start. The key
// runs to the first "}}" and may not cross a line break; the content is the
// shortest span, line breaks included, that ends in the matching close tag.
func matchBlock(text string, start int) (block, bool) {
	keyStart := start + len(blockOpen)
	k := strings.Index(text[keyStart:], blockClose)
	if k < 0 {
		return block{}, false
	}
	key := text[keyStart : keyStart+k]
	if strings.ContainsAny(key, "\r\n\u2028\u2029") {
		return block{}, false
	}

	contentStart := keyStart + k + len(blockClose)
	closeTag := blockOpen + "/" + key + blockClose
	c := strings.Index(text[contentStart:], closeTag)
	if c < 0 {
		return block{}, false
	}

	return block{
		start:   start,
		end:     contentStart + c + len(closeTag),
		key:     key,
		content: text[contentStart : contentStart+c],
	}, true
}

// stripLineBreaks removes every carriage return and line feed.
func stripLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
