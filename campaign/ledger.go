package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS documents (
	campaign   TEXT    NOT NULL,
	step       INTEGER NOT NULL,
	topic      TEXT    NOT NULL,
	post_id    INTEGER NOT NULL,
	title      TEXT    NOT NULL DEFAULT '',
	link       TEXT    NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	PRIMARY KEY (campaign, step)
);`

// Entry is one created document.
type Entry struct {
	Campaign  string
	Step      int
	Topic     string
	PostID    int
	Title     string
	Link      string
	CreatedAt time.Time
}

// Ledger records the documents a campaign created so a rerun can resume.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the sqlite ledger at path.
func OpenLedger(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ledger: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	for _, p := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// Record stores e, replacing an earlier row for the same step.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (campaign, step, topic, post_id, title, link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Campaign, e.Step, e.Topic, e.PostID, e.Title, e.Link, e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("ledger: record step %d: %w", e.Step, err)
	}
	return nil
}

// Entries returns the recorded documents of a campaign keyed by step.
func (l *Ledger) Entries(ctx context.Context, campaign string) (map[int]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT step, topic, post_id, title, link, created_at FROM documents WHERE campaign = ? ORDER BY step`,
		campaign)
	if err != nil {
		return nil, fmt.Errorf("ledger: query: %w", err)
	}
	defer rows.Close()

	out := map[int]Entry{}
	for rows.Next() {
		e := Entry{Campaign: campaign}
		var created int64
		if err := rows.Scan(&e.Step, &e.Topic, &e.PostID, &e.Title, &e.Link, &created); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		out[e.Step] = e
	}
	return out, rows.Err()
}
