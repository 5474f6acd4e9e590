// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/twison/internal/story"
	"github.com/pdiddy/twison/internal/twine"
	"github.com/pdiddy/twison/pkg/types"
)

// LoadStory parses the Twine story file at path and converts its passages.
func LoadStory(path string, opts story.Options) (*types.StoryRecord, error) {
	doc, err := twine.ParseFile(path)
	if err != nil {
		return nil, err
	}
	s, err := doc.Story()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	passages := story.ConvertStory(s, opts)
	return &types.StoryRecord{
		Name:         s.Name(),
		IFID:         s.IFID(),
		Format:       s.Format(),
		StartPassage: s.StartPassage(),
		Passages:     passages,
		Dropped:      len(s.Passages()) - len(passages),
	}, nil
}

// TwineConverter converts Twine 2 HTML story files.
type TwineConverter struct {
	Options story.Options
	Logger  *zap.Logger
}

// Convert implements Converter.
func (c TwineConverter) Convert(path string) ([]types.Passage, error) {
	rec, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return rec.Passages, nil
}

// Load is LoadStory with the converter's options, logging the story
// metadata at debug level.
func (c TwineConverter) Load(path string) (*types.StoryRecord, error) {
	rec, err := LoadStory(path, c.Options)
	if err != nil {
		return nil, err
	}
	if c.Logger != nil {
		c.Logger.Debug("converted story",
			zap.String("path", path),
			zap.String("story", rec.Name),
			zap.String("format", rec.Format),
			zap.String("start", rec.StartPassage),
			zap.Int("passages", len(rec.Passages)),
			zap.Int("dropped", rec.Dropped),
		)
	}
	return rec, nil
}
