package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/codewithboateng/minepack/internal/ir"
)

// CreateWaiver stores a waiver for rule (a rule key or "*"), optionally
// limited to files matching pattern.
func (db *DB) CreateWaiver(rule, pattern, reason, createdBy string, expires time.Time) (int64, error) {
	if rule == "" || reason == "" {
		return 0, errors.New("waiver needs a rule and a reason")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO waivers(rule, path_pattern, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?)`,
		rule, nz(pattern), reason, expires.UTC().Format(time.RFC3339Nano), createdBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RevokeWaiver marks an active waiver revoked. The revoker goes to the audit log.
func (db *DB) RevokeWaiver(id int64) error {
	return execOne(db.conn, `UPDATE waivers SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
}

// ListWaivers returns waivers newest first; activeOnly keeps those neither
// revoked nor expired at now.
func (db *DB) ListWaivers(activeOnly bool, now time.Time) ([]ir.Waiver, error) {
	q := `
SELECT id, rule, COALESCE(path_pattern,''), reason, expires_at, created_by, created_at, revoked_at
FROM waivers`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, now.UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ir.Waiver{}
	for rows.Next() {
		var (
			w       ir.Waiver
			exp, ca string
			ra      sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Rule, &w.PathPattern, &w.Reason, &exp, &w.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		w.ExpiresAt = parseTime(exp)
		w.CreatedAt = parseTime(ca)
		if ra.Valid {
			t := parseTime(ra.String)
			w.RevokedAt = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}
