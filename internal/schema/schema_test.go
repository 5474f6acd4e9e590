// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T) map[string]any {
	t.Helper()
	data, err := Generate()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func definition(t *testing.T, doc map[string]any, name string) map[string]any {
	t.Helper()
	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok, "schema has no $defs")
	def, ok := defs[name].(map[string]any)
	require.True(t, ok, "missing definition %s", name)
	return def
}

func TestGenerateRoot(t *testing.T) {
	doc := decode(t)
	assert.Equal(t, "array", doc["type"])
	assert.Equal(t, title, doc["title"])

	items, ok := doc["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "#/$defs/Passage", items["$ref"])
}

func TestGeneratePassage(t *testing.T) {
	passage := definition(t, decode(t), "Passage")
	assert.ElementsMatch(t, []any{"dynamic_line", "topic"}, passage["required"])
	assert.Equal(t, false, passage["additionalProperties"])

	props := passage["properties"].(map[string]any)
	for _, name := range []string{"id", "tags", "dynamic_line", "responses", "topic"} {
		assert.Contains(t, props, name)
	}
	topic := props["topic"].(map[string]any)
	assert.Equal(t, []any{"talk_topic"}, topic["enum"])
}

func TestGenerateResponse(t *testing.T) {
	doc := decode(t)
	response := definition(t, doc, "Response")
	assert.ElementsMatch(t, []any{"topic", "text"}, response["required"])

	props := response["properties"].(map[string]any)
	for _, name := range []string{"effect", "condition"} {
		field := props[name].(map[string]any)
		assert.Equal(t, "#/$defs/PropertyValue", field["$ref"], name)
	}
	prop := props["prop"].(map[string]any)
	assert.Equal(t, "object", prop["type"])

	value := definition(t, doc, "PropertyValue")
	oneOf := value["oneOf"].([]any)
	require.Len(t, oneOf, 2)
	assert.Equal(t, "string", oneOf[0].(map[string]any)["type"])
	assert.Equal(t, "object", oneOf[1].(map[string]any)["type"])
}
