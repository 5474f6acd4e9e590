// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProperties(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     map[string]any
		wantKeys []string
	}{
		{
			name: "no blocks",
			text: "Just prose, nothing else.",
		},
		{
			name:     "single block",
			text:     "{{k}}v{{/k}}",
			want:     map[string]any{"k": "v"},
			wantKeys: []string{"k"},
		},
		{
			name:     "line breaks removed from content",
			text:     "{{k}}line one\nline two\r\n!{{/k}}",
			want:     map[string]any{"k": "line oneline two!"},
			wantKeys: []string{"k"},
		},
		{
			name:     "empty key",
			text:     "{{}}v{{/}}",
			want:     map[string]any{"": "v"},
			wantKeys: []string{""},
		},
		{
			name:     "nested block",
			text:     "{{a}}{{b}}x{{/b}}{{/a}}",
			want:     map[string]any{"a": map[string]any{"b": "x"}},
			wantKeys: []string{"a"},
		},
		{
			name:     "nested across lines",
			text:     "{{effect}}\n{{npc}}angry{{/npc}}\n{{/effect}}",
			want:     map[string]any{"effect": map[string]any{"npc": "angry"}},
			wantKeys: []string{"effect"},
		},
		{
			name:     "siblings in occurrence order",
			text:     "{{z}}1{{/z}} and {{a}}2{{/a}}",
			want:     map[string]any{"z": "1", "a": "2"},
			wantKeys: []string{"z", "a"},
		},
		{
			name:     "duplicate key keeps position and takes later value",
			text:     "{{a}}1{{/a}}{{b}}2{{/b}}{{a}}3{{/a}}",
			want:     map[string]any{"a": "3", "b": "2"},
			wantKeys: []string{"a", "b"},
		},
		{
			name: "mismatched close tag",
			text: "{{a}}x{{/b}}",
		},
		{
			name:     "unclosed block does not hide a later one",
			text:     "{{a}}x {{b}}y{{/b}}",
			want:     map[string]any{"b": "y"},
			wantKeys: []string{"b"},
		},
		{
			name:     "empty content",
			text:     "{{a}}{{/a}}",
			want:     map[string]any{"a": ""},
			wantKeys: []string{"a"},
		},
		{
			name:     "shortest content wins",
			text:     "{{a}}1{{/a}}2{{/a}}",
			want:     map[string]any{"a": "1"},
			wantKeys: []string{"a"},
		},
		{
			name:     "same key nested stays literal",
			text:     "{{a}}{{a}}x{{/a}}{{/a}}",
			want:     map[string]any{"a": "{{a}}x"},
			wantKeys: []string{"a"},
		},
		{
			name: "key may not cross a line",
			text: "{{a\n}}x{{/a\n}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractProperties(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ToMap())
			assert.Equal(t, tt.wantKeys, got.Keys())
		})
	}
}

func TestExtractPropertiesIdempotent(t *testing.T) {
	props := ExtractProperties("{{mood}}calm{{/mood}}")
	require.NotNil(t, props)

	v, ok := props.Get("mood")
	require.True(t, ok)
	assert.False(t, v.IsNested())
	assert.Nil(t, ExtractProperties(v.Text))
}

func TestExtractPropertiesJSONOrder(t *testing.T) {
	props := ExtractProperties("{{z}}1{{/z}}{{a}}{{m}}2{{/m}}{{/a}}")
	require.NotNil(t, props)

	data, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":{"m":"2"}}`, string(data))
}

func TestStripProperties(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "no blocks", text: "Hello there.", want: "Hello there."},
		{name: "inline block", text: "Go {{effect}}x{{/effect}} now", want: "Go  now"},
		{name: "two blocks", text: "{{a}}1{{/a}}mid{{b}}2{{/b}}", want: "mid"},
		{name: "nested block removed whole", text: "a{{x}}{{y}}1{{/y}}{{/x}}b", want: "ab"},
		{name: "unmatched kept", text: "{{a}}x", want: "{{a}}x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripProperties(tt.text))
		})
	}
}
