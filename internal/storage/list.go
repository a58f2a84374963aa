package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codewithboateng/minepack/internal/ir"
)

// ListRuns returns runs newest first with per-bucket counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.exit_code, r.waived,
		       (SELECT COUNT(1) FROM findings f WHERE f.run_id = r.id AND f.bucket = 'errors'),
		       (SELECT COUNT(1) FROM findings f WHERE f.run_id = r.id AND f.bucket = 'warnings'),
		       (SELECT COUNT(1) FROM findings f WHERE f.run_id = r.id AND f.bucket = 'info')
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.ExitCode, &rr.Waived, &rr.Errors, &rr.Warnings, &rr.Info); err != nil {
			return nil, err
		}
		rr.StartedAt = parseTime(startedAtStr)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListFindings returns the entries of a run in report order. An empty
// bucket selects all buckets.
func (db *DB) ListFindings(runID, bucket string) ([]FindingRow, error) {
	if bucket != "" && !validBucket(bucket) {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	q := `SELECT seq, bucket, rule, COALESCE(file,''), COALESCE(message,'') FROM findings WHERE run_id = ?`
	args := []any{runID}
	if bucket != "" {
		q += ` AND bucket = ?`
		args = append(args, bucket)
	}
	q += ` ORDER BY seq`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FindingRow{}
	for rows.Next() {
		var f FindingRow
		if err := rows.Scan(&f.Seq, &f.Bucket, &f.Rule, &f.File, &f.Message); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func validBucket(b string) bool {
	for _, k := range ir.Buckets {
		if string(k) == b {
			return true
		}
	}
	return false
}

// parseTime accepts RFC3339Nano and RFC3339; anything else is the zero time.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
