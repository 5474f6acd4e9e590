// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoryRecord is a converted story together with the metadata read from
// its tw-storydata element.
type StoryRecord struct {
	Name         string
	IFID         string
	Format       string
	StartPassage string

	// Passages holds the converted passages, sentinels already removed.
	Passages []Passage

	// Dropped counts the sentinel passages filtered out of Passages.
	Dropped int
}
