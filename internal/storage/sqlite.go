package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/codewithboateng/minepack/internal/ir"
)

// ErrNotFound is returned when a run, user or waiver does not exist.
var ErrNotFound = errors.New("not found")

// DB is the run history backed by SQLite.
type DB struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{conn: c}, nil
}

// Open opens path, creating its directory, and ensures the schema exists.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return db, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures tables exist.
func (db *DB) CreateSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id            TEXT PRIMARY KEY,
  started_at    TEXT NOT NULL,  -- RFC3339Nano
  ir_version    TEXT,
  behavior_root TEXT,
  resource_root TEXT,
  exit_code     INTEGER NOT NULL,
  waived        INTEGER NOT NULL DEFAULT 0,
  run_json      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
  run_id  TEXT NOT NULL,
  seq     INTEGER NOT NULL,
  bucket  TEXT NOT NULL,       -- errors|warnings|info
  rule    TEXT NOT NULL,
  file    TEXT,
  message TEXT,
  PRIMARY KEY (run_id, seq),
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  username TEXT,
  action TEXT NOT NULL,
  resource TEXT,
  meta_json TEXT
);

CREATE TABLE IF NOT EXISTS waivers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule         TEXT NOT NULL,   -- rule key or "*"
  path_pattern TEXT,            -- optional doublestar glob; NULL = any file
  reason       TEXT NOT NULL,
  expires_at   TEXT NOT NULL,
  created_by   TEXT NOT NULL,
  created_at   TEXT NOT NULL,
  revoked_at   TEXT             -- NULL = active
);
`)
	return err
}

// NewRunID returns an identifier that sorts by start time.
func NewRunID(t time.Time) string {
	return "run-" + t.UTC().Format("20060102T150405Z") + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// SaveRun upserts a run and (re)writes its findings.
func (db *DB) SaveRun(run *ir.Run) error {
	if run.ID == "" {
		return errors.New("save run: empty id")
	}
	run.Report = run.Report.Normalized()
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ts := run.StartedAt.UTC().Format(time.RFC3339Nano)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, ir_version, behavior_root, resource_root, exit_code, waived, run_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, ir_version=excluded.ir_version,
           behavior_root=excluded.behavior_root, resource_root=excluded.resource_root,
           exit_code=excluded.exit_code, waived=excluded.waived, run_json=excluded.run_json`,
		run.ID, ts, run.IRVersion, run.BehaviorRoot, run.ResourceRoot, run.ExitCode, run.Waived, string(b),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM findings WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	if run.Report.Len() > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO findings (run_id, seq, bucket, rule, file, message)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		seq := 0
		for _, bucket := range ir.Buckets {
			for _, e := range run.Report.Bucket(bucket) {
				if _, err := stmt.Exec(run.ID, seq, string(bucket), e.Rule, e.File, e.Message); err != nil {
					return err
				}
				seq++
			}
		}
	}

	return tx.Commit()
}

// LoadRun returns the full run from its stored JSON.
func (db *DB) LoadRun(id string) (ir.Run, error) {
	return db.scanRun(db.conn.QueryRow(`SELECT run_json FROM runs WHERE id = ?`, id))
}

// LoadLatestRun returns the most recently started run.
func (db *DB) LoadLatestRun() (ir.Run, error) {
	return db.scanRun(db.conn.QueryRow(`SELECT run_json FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`))
}

func (db *DB) scanRun(row *sql.Row) (ir.Run, error) {
	var s string
	if err := row.Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, ErrNotFound
		}
		return ir.Run{}, err
	}
	var run ir.Run
	if err := json.Unmarshal([]byte(s), &run); err != nil {
		return ir.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}
