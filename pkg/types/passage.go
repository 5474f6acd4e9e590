// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records twison produces from a story export:
// talk_topic passages, their responses, and the inline property mappings
// attached to responses. It also holds the configuration structs shared by
// the conversion, catalog, and logging layers.
package types

// TalkTopic is the classification attached to every converted passage.
const TalkTopic = "talk_topic"

// Passage is one dialogue node converted from a story passage. Optional
// fields are omitted from output rather than written as null or empty.
type Passage struct {
	// ID is the passage name. Empty when the source passage has no name.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Tags are the whitespace-separated passage tags in source order.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// DynamicLine is the narrator text: every body line before the first
	// line that carries a link.
	DynamicLine string `json:"dynamic_line" yaml:"dynamic_line"`

	// Responses are the outgoing links in line, then column, order.
	Responses []Response `json:"responses,omitempty" yaml:"responses,omitempty"`

	// Topic is always TalkTopic.
	Topic string `json:"topic" yaml:"topic" jsonschema:"enum=talk_topic"`
}

// Response is one outgoing link from a passage. At most one of Effect,
// Condition, and Prop is set.
type Response struct {
	// Topic is the raw link interior, e.g. "north" or "south->cave".
	Topic string `json:"topic" yaml:"topic"`

	// Text is the rest of the link's line with the link and property blocks removed.
	Text string `json:"text" yaml:"text"`

	Effect    *PropertyValue `json:"effect,omitempty" yaml:"effect,omitempty"`
	Condition *PropertyValue `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Prop carries the whole line mapping when it has neither an effect
	// nor a condition key.
	Prop *Properties `json:"prop,omitempty" yaml:"prop,omitempty"`
}
