package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/minepack/internal/ir"
)

// Diff compares the findings of two runs. A finding is identified by rule,
// file and message; a finding present in both runs under different buckets
// is "changed".
type Diff struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary DiffSummary   `json:"summary"`
	New     []DiffFinding `json:"new"`
	Removed []DiffFinding `json:"removed"`
	Changed []DiffChanged `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type DiffFinding struct {
	Bucket  ir.Bucket `json:"bucket"`
	Rule    string    `json:"rule"`
	File    string    `json:"file"`
	Message string    `json:"message"`
}

type DiffChanged struct {
	Key  string    `json:"key"`
	Base ir.Bucket `json:"base_bucket"`
	Head ir.Bucket `json:"head_bucket"`
}

// CompareRuns computes the diff between base and head.
func CompareRuns(base, head *ir.Run) Diff {
	bm := index(base)
	hm := index(head)

	added := []DiffFinding{}
	removed := []DiffFinding{}
	changed := []DiffChanged{}
	for k, hf := range hm {
		bf, ok := bm[k]
		switch {
		case !ok:
			added = append(added, hf)
		case bf.Bucket != hf.Bucket:
			changed = append(changed, DiffChanged{Key: k, Base: bf.Bucket, Head: hf.Bucket})
		}
	}
	for k, bf := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, bf)
		}
	}

	sort.Slice(added, func(i, j int) bool { return keyOf(added[i]) < keyOf(added[j]) })
	sort.Slice(removed, func(i, j int) bool { return keyOf(removed[i]) < keyOf(removed[j]) })
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	return Diff{
		BaseID: base.ID, HeadID: head.ID,
		Summary: DiffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
}

// WriteDiffJSON writes CompareRuns(base, head) to outDir.
func WriteDiffJSON(outDir string, base, head *ir.Run) (string, error) {
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(CompareRuns(base, head), "", "  ")
	if err != nil {
		return "", err
	}
	return path, WriteFileAtomic(path, b, 0o644)
}

func index(run *ir.Run) map[string]DiffFinding {
	m := map[string]DiffFinding{}
	for _, b := range ir.Buckets {
		for _, e := range run.Report.Bucket(b) {
			f := DiffFinding{Bucket: b, Rule: e.Rule, File: e.File, Message: e.Message}
			m[keyOf(f)] = f
		}
	}
	return m
}

func keyOf(f DiffFinding) string {
	sb := strings.Builder{}
	sb.WriteString(f.Rule)
	sb.WriteByte('|')
	sb.WriteString(filepath.ToSlash(f.File))
	sb.WriteByte('|')
	sb.WriteString(strings.TrimSpace(f.Message))
	return sb.String()
}
