// Package store is the durable work queue of classified changelog lines.
// Each target version gets its own SQLite table, deterministically named
// from the version string, so repeated runs against the same version
// resume where the previous one stopped.
//
// Entry lifecycle: a row is created pending, transitions exactly once to a
// terminal state (done on success, not-supported on failure), and is never
// deleted. The transition functions reject updates to rows already in a
// terminal state.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

// ErrTerminal reports an attempted state transition on an entry that is
// already done or not-supported.
var ErrTerminal = errors.New("entry already in a terminal state")

// ErrNotFound reports an update against a nonexistent entry.
var ErrNotFound = errors.New("entry not found")

// Entry is one row of the work queue. A row is pending iff IsDone and
// NotSupported are both false; they are never both true.
type Entry struct {
	ID                 int64
	Audience           changelog.Audience
	Content            string
	IsDone             bool
	NotSupported       bool
	NotSupportedReason string
	PRDescription      string
	PRLink             string
	PRDiff             string
	TokenCount         int64
}

// Outcome carries the fields recorded when an entry completes successfully.
type Outcome struct {
	PRDescription string
	PRLink        string
	PRDiff        string
	TokenCount    int64
}

// Queue manages the table for one changelog version.
type Queue struct {
	db    *sql.DB
	table string
}

var tableNameSanitizer = regexp.MustCompile(`[^0-9A-Za-z_]`)

// tableName derives the per-version table name. Dots become underscores
// and anything outside [0-9A-Za-z_] is dropped, since the name is spliced
// into SQL directly.
func tableName(version string) string {
	sanitized := strings.ReplaceAll(version, ".", "_")
	sanitized = tableNameSanitizer.ReplaceAllString(sanitized, "")
	return "changelog_lines_v" + sanitized
}

// Open opens the queue database under dataDir, creating the directory, the
// database file and the version's table as needed.
func Open(dataDir, dbName, version string) (*Queue, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, dbName))
	if err != nil {
		return nil, fmt.Errorf("opening queue database: %w", err)
	}

	q := &Queue{db: db, table: tableName(version)}
	if err := q.init(); err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// init creates the version's table if it does not exist yet. The UNIQUE
// constraint on content is the de-duplication mechanism across runs.
func (q *Queue) init() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			audience TEXT,
			content TEXT NOT NULL UNIQUE,
			is_done BOOLEAN NOT NULL DEFAULT FALSE,
			not_supported BOOLEAN NOT NULL DEFAULT FALSE,
			not_supported_reason TEXT,
			pr_description TEXT,
			pr_link TEXT,
			pr_diff TEXT,
			token_count INTEGER
		)
	`, q.table)

	if _, err := q.db.Exec(schema); err != nil {
		return fmt.Errorf("creating table %s: %w", q.table, err)
	}
	return nil
}

// Close closes the underlying database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Table returns the name of the version's table.
func (q *Queue) Table() string {
	return q.table
}

// InsertLine inserts a classified line as a pending entry. Re-inserting
// content that already exists is a no-op, not an error; the second return
// value reports whether a new row was created.
func (q *Queue) InsertLine(content string, audience changelog.Audience) (int64, bool, error) {
	res, err := q.db.Exec(
		fmt.Sprintf(`INSERT INTO %s (content, audience) VALUES (?, ?)`, q.table),
		content, nullableAudience(audience),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("inserting line: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, true, nil
}

// PendingLines returns entries that are neither done nor not-supported,
// ordered by audience for stable batching, or randomized for sampling.
// A limit of 0 or less means no limit.
func (q *Queue) PendingLines(limit int, randomize bool) ([]Entry, error) {
	query := fmt.Sprintf(
		`SELECT id, audience, content, is_done, not_supported, not_supported_reason,
		        pr_description, pr_link, pr_diff, token_count
		 FROM %s WHERE is_done = FALSE AND not_supported = FALSE`, q.table)
	if randomize {
		query += " ORDER BY RANDOM()"
	} else {
		query += " ORDER BY audience"
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("selecting pending lines: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending line: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending lines: %w", err)
	}
	return entries, nil
}

// get returns a single entry by id.
func (q *Queue) get(id int64) (*Entry, error) {
	row := q.db.QueryRow(fmt.Sprintf(
		`SELECT id, audience, content, is_done, not_supported, not_supported_reason,
		        pr_description, pr_link, pr_diff, token_count
		 FROM %s WHERE id = ?`, q.table), id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading entry %d: %w", id, err)
	}
	return &entry, nil
}

// MarkDone transitions a pending entry to the done state and records the
// enrichment outcome. Returns ErrTerminal if the entry is already done or
// not-supported.
func (q *Queue) MarkDone(id int64, outcome Outcome) error {
	return q.transition(id,
		`is_done = TRUE, pr_description = ?, pr_link = ?, pr_diff = ?, token_count = ?`,
		outcome.PRDescription, outcome.PRLink, outcome.PRDiff, outcome.TokenCount)
}

// MarkNotSupported transitions a pending entry to the not-supported state
// with a human-readable reason. A non-empty prLink is recorded even on
// failure, so a resolved PR stays traceable when its diff was unavailable.
// Returns ErrTerminal if the entry is already done or not-supported.
func (q *Queue) MarkNotSupported(id int64, reason, prLink string) error {
	if prLink != "" {
		return q.transition(id,
			`not_supported = TRUE, not_supported_reason = ?, pr_link = ?`,
			reason, prLink)
	}
	return q.transition(id, `not_supported = TRUE, not_supported_reason = ?`, reason)
}

// transition applies a partial update to an entry, guarded so only pending
// entries can change state. The guard lives in the WHERE clause, making the
// check and the update a single atomic statement.
func (q *Queue) transition(id int64, setClause string, args ...any) error {
	args = append(args, id)
	res, err := q.db.Exec(fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = ? AND is_done = FALSE AND not_supported = FALSE`,
		q.table, setClause), args...)
	if err != nil {
		return fmt.Errorf("updating entry %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating entry %d: %w", id, err)
	}
	if affected == 0 {
		// Distinguish a missing row from one already finalized.
		var exists bool
		err := q.db.QueryRow(fmt.Sprintf(
			`SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)`, q.table), id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking entry %d: %w", id, err)
		}
		if exists {
			return fmt.Errorf("entry %d: %w", id, ErrTerminal)
		}
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Counts reports how many entries are pending, done and not-supported.
func (q *Queue) Counts() (pending, done, notSupported int, err error) {
	row := q.db.QueryRow(fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN is_done = FALSE AND not_supported = FALSE THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_done = TRUE THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN not_supported = TRUE THEN 1 ELSE 0 END), 0)
		FROM %s`, q.table))
	if err := row.Scan(&pending, &done, &notSupported); err != nil {
		return 0, 0, 0, fmt.Errorf("counting entries: %w", err)
	}
	return pending, done, notSupported, nil
}

func nullableAudience(audience changelog.Audience) any {
	if audience == changelog.AudienceUnknown {
		return nil
	}
	return string(audience)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		entry    Entry
		audience sql.NullString
		reason   sql.NullString
		prDesc   sql.NullString
		prLink   sql.NullString
		prDiff   sql.NullString
		tokens   sql.NullInt64
	)
	err := s.Scan(&entry.ID, &audience, &entry.Content, &entry.IsDone, &entry.NotSupported,
		&reason, &prDesc, &prLink, &prDiff, &tokens)
	if err != nil {
		return Entry{}, err
	}

	entry.Audience = changelog.Audience(audience.String)
	entry.NotSupportedReason = reason.String
	entry.PRDescription = prDesc.String
	entry.PRLink = prLink.String
	entry.PRDiff = prDiff.String
	entry.TokenCount = tokens.Int64
	return entry, nil
}
