// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/twison/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Text matches topics whose dynamic line or any response text contains
	// it, ignoring ASCII case.
	Text string

	// Tag filters to topics carrying this tag.
	Tag string

	// Story filters by story id.
	Story string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search text or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Tag == "" && q.Story == ""
}

// TopicResult is a catalogued topic with the story it came from.
type TopicResult struct {
	Story     string `json:"story" yaml:"story"`
	StoryName string `json:"story_name,omitempty" yaml:"story_name,omitempty"`

	types.Passage `yaml:",inline"`
}

// Path returns the location of the catalog database.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

// Retrieve returns catalogued topics matching opts, ordered by story and
// then by position within the story.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]TopicResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT t.story_id, st.name, t.record
		FROM topics t
		LEFT JOIN stories st ON t.story_id = st.id
		WHERE 1=1`)

	if opts.Text != "" {
		pattern := "%" + escapeLike(opts.Text) + "%"
		qb.WriteString(` AND (t.dynamic_line LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM responses r WHERE r.topic_rowid = t.rowid AND r.text LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern)
	}

	if opts.Tag != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(t.tags) WHERE value = ?)`)
		args = append(args, opts.Tag)
	}

	if opts.Story != "" {
		qb.WriteString(` AND t.story_id = ?`)
		args = append(args, opts.Story)
	}

	qb.WriteString(` ORDER BY t.story_id, t.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []TopicResult
	for rows.Next() {
		var (
			tr        TopicResult
			storyName sql.NullString
			record    string
		)
		if err := rows.Scan(&tr.Story, &storyName, &record); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(record), &tr.Passage); err != nil {
			return nil, fmt.Errorf("decoding topic in %s: %w", tr.Story, err)
		}
		if storyName.Valid {
			tr.StoryName = storyName.String
		}
		results = append(results, tr)
	}

	return results, rows.Err()
}

// StorySummary describes one catalogued story.
type StorySummary struct {
	ID           string `json:"id" yaml:"id"`
	Path         string `json:"path" yaml:"path"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	IFID         string `json:"ifid,omitempty" yaml:"ifid,omitempty"`
	Format       string `json:"format,omitempty" yaml:"format,omitempty"`
	StartPassage string `json:"start_passage,omitempty" yaml:"start_passage,omitempty"`
	Topics       int    `json:"topics" yaml:"topics"`
}

// Stories lists the catalogued stories with their topic counts, ordered by id.
func (s *Store) Stories(ctx context.Context) ([]StorySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.id, st.path, st.name, st.ifid, st.format, st.start_passage,
			(SELECT count(*) FROM topics t WHERE t.story_id = st.id)
		FROM stories st
		ORDER BY st.id`)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	var out []StorySummary
	for rows.Next() {
		var (
			ss                          StorySummary
			name, ifid, format, startPs sql.NullString
		)
		if err := rows.Scan(&ss.ID, &ss.Path, &name, &ifid, &format, &startPs, &ss.Topics); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ss.Name, ss.IFID, ss.Format, ss.StartPassage = name.String, ifid.String, format.String, startPs.String
		out = append(out, ss)
	}
	return out, rows.Err()
}

// escapeLike escapes the LIKE wildcards in s for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
