// Package sqlitekv is the local key-value store behind snapshots, the engagement journal
// and the activity budget.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"solofeed/internal/model"
	"solofeed/internal/store"
)

// DB wraps a SQLite database.
type DB struct{ sql *sql.DB }

var _ store.Snapshots = (*DB)(nil)

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS snapshots (
	  key TEXT PRIMARY KEY,
	  value BLOB NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL,
	  actor_id TEXT,
	  post_id TEXT,
	  comment_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	`)
	return err
}

// SaveSnapshot replaces the snapshot stored under key.
func (d *DB) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO snapshots(key, value, updated_at) VALUES(?,?,?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, data, time.Now().UTC().UnixNano())
	return err
}

func (d *DB) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var b []byte
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key=?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoSnapshot
	}
	return b, err
}

// PutEvent appends an applied engagement to the journal.
func (d *DB) PutEvent(ctx context.Context, ev model.EngagementEvent) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO events(ts, type, actor_id, post_id, comment_id) VALUES(?,?,?,?,?)`,
		ev.Timestamp.UTC().Unix(), ev.Type, ev.ActorID, ev.PostID, ev.CommentID)
	return err
}

// LoadEventsRange returns events in [start, end), optionally filtered by type.
func (d *DB) LoadEventsRange(ctx context.Context, start, end time.Time, typ string) ([]model.EngagementEvent, error) {
	var rows *sql.Rows
	var err error
	if typ == "" {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, type, actor_id, post_id, comment_id FROM events WHERE ts>=? AND ts<? ORDER BY ts, id`, start.Unix(), end.Unix())
	} else {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, type, actor_id, post_id, comment_id FROM events WHERE ts>=? AND ts<? AND type=? ORDER BY ts, id`, start.Unix(), end.Unix(), typ)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EngagementEvent
	for rows.Next() {
		var ts int64
		var ev model.EngagementEvent
		var actor, post, comment sql.NullString
		if err := rows.Scan(&ts, &ev.Type, &actor, &post, &comment); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(ts, 0).UTC()
		ev.ActorID, ev.PostID, ev.CommentID = actor.String, post.String, comment.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// PutAction records one budgeted action.
func (d *DB) PutAction(ctx context.Context, ts time.Time, typ string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, type) VALUES(?,?)`, ts.UTC().Unix(), typ)
	return err
}

// CountActionsWithin counts actions of typ in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<? AND type=?`,
		start.UTC().Unix(), end.UTC().Unix(), typ).Scan(&n)
	return n, err
}
