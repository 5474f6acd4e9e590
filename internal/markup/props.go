// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markup

import (
	"strings"

	"github.com/pdiddy/twison/pkg/types"
)

// ExtractProperties collects every {{key}}...{{/key}} block in text into one
// ordered mapping. Block content has its line breaks removed and is scanned
// again: content holding further blocks becomes a nested mapping, anything
// else is stored as the stripped string. A repeated key keeps its first
// position and takes the later value. It returns nil when text has no
// matching block.
func ExtractProperties(text string) *types.Properties {
	var props *types.Properties
	pos := 0
	for {
		b, ok := nextBlock(text, pos)
		if !ok {
			break
		}
		if props == nil {
			props = types.NewProperties()
		}

		content := stripLineBreaks(b.content)
		if nested := ExtractProperties(content); nested != nil {
			props.SetNested(b.key, nested)
		} else {
			props.Set(b.key, content)
		}
		pos = b.end
	}
	return props
}

// StripProperties removes every matching property block from text, tags
// and content alike. Unmatched tags stay as literal text.
func StripProperties(text string) string {
	var out strings.Builder
	pos := 0
	for {
		b, ok := nextBlock(text, pos)
		if !ok {
			break
		}
		out.WriteString(text[pos:b.start])
		pos = b.end
	}
	if pos == 0 {
		return text
	}
	out.WriteString(text[pos:])
	return out.String()
}
