// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"slices"
)

// DanglingRef is a response whose link target names no topic in its story.
type DanglingRef struct {
	Story string `json:"story" yaml:"story"`

	// From is the id of the topic holding the response.
	From string `json:"from" yaml:"from"`

	// Target is the raw link interior; Resolved is the passage name it
	// points at after separator conventions are applied.
	Target   string `json:"target" yaml:"target"`
	Resolved string `json:"resolved" yaml:"resolved"`
}

// Dangling returns responses whose resolved target is neither a topic id in
// the same story nor one of sentinels, ordered by story and position.
func (s *Store) Dangling(ctx context.Context, sentinels []string) ([]DanglingRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.story_id, COALESCE(t.topic_id, ''), r.target, r.resolved
		FROM responses r
		JOIN topics t ON t.rowid = r.topic_rowid
		WHERE NOT EXISTS (
			SELECT 1 FROM topics d WHERE d.story_id = r.story_id AND d.topic_id = r.resolved
		)
		ORDER BY r.story_id, t.position, r.position`)
	if err != nil {
		return nil, fmt.Errorf("querying responses: %w", err)
	}
	defer rows.Close()

	var out []DanglingRef
	for rows.Next() {
		var ref DanglingRef
		if err := rows.Scan(&ref.Story, &ref.From, &ref.Target, &ref.Resolved); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if slices.Contains(sentinels, ref.Resolved) {
			continue
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}
