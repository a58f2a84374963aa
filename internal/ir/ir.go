package ir

import "time"

// Version is the schema version stamped on stored runs.
const Version = "1.0"

// Bucket names one of the three classified sequences of a Report.
type Bucket string

const (
	BucketErrors   Bucket = "errors"
	BucketWarnings Bucket = "warnings"
	BucketInfo     Bucket = "info"
)

// Buckets lists the report buckets in rendering order.
var Buckets = []Bucket{BucketErrors, BucketWarnings, BucketInfo}

// Entry is a finding tagged with the rule that produced it.
// Severity is the rule's registered severity; the bucket holding the entry
// is the final classification and may differ after overrides.
type Entry struct {
	Rule     string `json:"rule"`
	File     string `json:"file"`
	Message  string `json:"message"`
	Severity string `json:"-"`
	Seq      int    `json:"-"` // position in execution order
}

// Report is the persisted validation artifact.
type Report struct {
	Errors    []Entry `json:"errors"`
	Warnings  []Entry `json:"warnings"`
	Info      []Entry `json:"info"`
	Timestamp string  `json:"timestamp"`
}

// Normalized returns r with nil buckets replaced by empty ones so the JSON
// form always carries arrays.
func (r Report) Normalized() Report {
	if r.Errors == nil {
		r.Errors = []Entry{}
	}
	if r.Warnings == nil {
		r.Warnings = []Entry{}
	}
	if r.Info == nil {
		r.Info = []Entry{}
	}
	return r
}

// Bucket returns the entries stored under b.
func (r Report) Bucket(b Bucket) []Entry {
	switch b {
	case BucketErrors:
		return r.Errors
	case BucketWarnings:
		return r.Warnings
	case BucketInfo:
		return r.Info
	}
	return nil
}

// Len is the total number of entries across all buckets.
func (r Report) Len() int { return len(r.Errors) + len(r.Warnings) + len(r.Info) }

// Run is one stored validation invocation.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	IRVersion    string    `json:"ir_version,omitempty"`
	BehaviorRoot string    `json:"behavior_root,omitempty"`
	ResourceRoot string    `json:"resource_root,omitempty"`
	ExitCode     int       `json:"exit_code"`
	Waived       int       `json:"waived,omitempty"`
	Report       Report    `json:"report"`
}

// Waiver suppresses findings of one rule, optionally limited to files
// matching a glob pattern.
type Waiver struct {
	ID          int64      `json:"id"`
	Rule        string     `json:"rule"`
	PathPattern string     `json:"path_pattern,omitempty"`
	Reason      string     `json:"reason"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether w applies at instant now.
func (w Waiver) Active(now time.Time) bool {
	return w.RevokedAt == nil && now.Before(w.ExpiresAt)
}
