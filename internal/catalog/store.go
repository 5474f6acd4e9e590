// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes converted talk topics in a SQLite database so
// they can be searched, checked for broken links, and exported across
// stories. Re-indexing is incremental: a story file whose modification time
// and sentinel set have not changed since the last run is skipped.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/twison/internal/markup"
	"github.com/pdiddy/twison/pkg/types"
)

const (
	dbFile            = "topics.db"
	defaultMaxResults = 20
)

// LoadFunc reads and converts one story file.
type LoadFunc func(path string) (*types.StoryRecord, error)

// Store manages the topic catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog database at cfg.Dir/topics.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stories (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			name TEXT,
			ifid TEXT,
			format TEXT,
			start_passage TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			topic_id TEXT,
			tags TEXT,
			dynamic_line TEXT NOT NULL,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_story ON topics(story_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_topic_id ON topics(topic_id)`,
		`CREATE TABLE IF NOT EXISTS responses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			topic_rowid INTEGER NOT NULL REFERENCES topics(rowid) ON DELETE CASCADE,
			story_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			target TEXT NOT NULL,
			resolved TEXT NOT NULL,
			text TEXT NOT NULL,
			kind TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_topic ON responses(topic_rowid)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_story ON responses(story_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			story_id TEXT PRIMARY KEY,
			file_mod_time TEXT,
			sentinels TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return s.addColumn("indexing_status", "sentinels", `TEXT NOT NULL DEFAULT ''`)
}

// addColumn adds a column to a table created by an older schema.
func (s *Store) addColumn(table, column, decl string) error {
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl)); err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, column, err)
	}
	return nil
}

// StoryID returns the catalog key for a story file: its base name without
// extension.
func StoryID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IngestOptions controls an indexing run.
type IngestOptions struct {
	// Sentinels is the id set the loader drops. Nil means
	// types.DefaultSentinels. A story indexed under a different set is
	// re-indexed even when its file is unchanged.
	Sentinels []string

	// Force re-indexes every story regardless of recorded state.
	Force bool
}

// sentinelKey returns the canonical form of a sentinel set as recorded in
// indexing_status: a sorted, deduplicated JSON array. It is never empty, so
// rows migrated from an older catalog always re-index once.
func sentinelKey(ids []string) string {
	if ids == nil {
		ids = types.DefaultSentinels
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	data, _ := json.Marshal(append([]string{}, slices.Compact(sorted)...))
	return string(data)
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of stories processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads each story path with load and records its topics. A story
// whose file modification time and sentinel set match the recorded ones is
// skipped unless opts.Force is set; otherwise its rows are replaced.
// Per-story status lines and a summary go to w. Only context cancellation
// aborts the run.
func (s *Store) Ingest(ctx context.Context, paths []string, load LoadFunc, opts IngestOptions, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary
	sentinels := sentinelKey(opts.Sentinels)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		storyID := StoryID(path)

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", storyID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime, storedSentinels string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time, sentinels FROM indexing_status WHERE story_id = ?`, storyID,
		).Scan(&storedModTime, &storedSentinels)

		if err == nil && !opts.Force && storedModTime == modTime && storedSentinels == sentinels {
			fmt.Fprintf(w, "skipped %s\n", storyID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		rec, err := load(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", storyID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestStory(ctx, storyID, path, rec, modTime, sentinels); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", storyID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d topics)\n", storyID, len(rec.Passages))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d topics)\n", storyID, len(rec.Passages))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestStory(ctx context.Context, storyID, path string, rec *types.StoryRecord, modTime, sentinels string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE story_id = ?`, storyID); err != nil {
		return fmt.Errorf("deleting old responses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE story_id = ?`, storyID); err != nil {
		return fmt.Errorf("deleting old topics: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stories (id, path, name, ifid, format, start_passage)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			path=excluded.path, name=excluded.name, ifid=excluded.ifid,
			format=excluded.format, start_passage=excluded.start_passage`,
		storyID, path, rec.Name, rec.IFID, rec.Format, rec.StartPassage,
	)
	if err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}

	topicStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO topics (story_id, position, topic_id, tags, dynamic_line, record)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing topic insert: %w", err)
	}
	defer topicStmt.Close()

	respStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO responses (topic_rowid, story_id, position, target, resolved, text, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing response insert: %w", err)
	}
	defer respStmt.Close()

	for i, p := range rec.Passages {
		record, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding topic %s: %w", p.ID, err)
		}
		tagsJSON, _ := json.Marshal(p.Tags)

		res, err := topicStmt.ExecContext(ctx,
			storyID, i, p.ID, string(tagsJSON), p.DynamicLine, string(record))
		if err != nil {
			return fmt.Errorf("inserting topic %s: %w", p.ID, err)
		}
		topicRow, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading topic row id: %w", err)
		}

		for j, r := range p.Responses {
			_, err := respStmt.ExecContext(ctx,
				topicRow, storyID, j, r.Topic, markup.LinkTarget(r.Topic), r.Text, responseKind(r))
			if err != nil {
				return fmt.Errorf("inserting response %d of %s: %w", j, p.ID, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (story_id, file_mod_time, sentinels) VALUES (?, ?, ?)
		 ON CONFLICT(story_id) DO UPDATE SET
			file_mod_time=excluded.file_mod_time, sentinels=excluded.sentinels`,
		storyID, modTime, sentinels,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// responseKind names the property field a response carries, if any.
func responseKind(r types.Response) string {
	switch {
	case r.Effect != nil:
		return "effect"
	case r.Condition != nil:
		return "condition"
	case r.Prop != nil:
		return "prop"
	}
	return ""
}
