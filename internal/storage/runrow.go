package storage

import "time"

// RunRow is a lightweight listing row for run history.
type RunRow struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	ExitCode  int       `json:"exit_code"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
	Info      int       `json:"info"`
	Waived    int       `json:"waived,omitempty"`
}

// FindingRow is one stored report entry.
type FindingRow struct {
	Seq     int    `json:"seq"`
	Bucket  string `json:"bucket"`
	Rule    string `json:"rule"`
	File    string `json:"file"`
	Message string `json:"message"`
}
