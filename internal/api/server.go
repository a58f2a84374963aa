// Package api serves run history, the rule inventory and waivers over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/rules"
	"github.com/codewithboateng/minepack/internal/storage"
)

// Store is the run history contract the API needs.
type Store interface {
	ListRuns(limit, offset int) ([]storage.RunRow, error)
	LoadRun(id string) (ir.Run, error)
	LoadLatestRun() (ir.Run, error)
	ListFindings(runID, bucket string) ([]storage.FindingRow, error)

	ListWaivers(activeOnly bool, now time.Time) ([]ir.Waiver, error)
	CreateWaiver(rule, pattern, reason, createdBy string, expires time.Time) (int64, error)
	RevokeWaiver(id int64) error
}

// UserStore is the auth/audit contract the API uses.
type UserStore interface {
	GetUserByUsername(string) (storage.User, string, error)
	CreateSession(int64, string, time.Time) error
	GetSession(string) (storage.User, error)
	DeleteSession(string) error
	LogAudit(username, action, resource string, meta map[string]any) error
}

type Server struct {
	DB              Store
	UserStore       UserStore
	Registry        *rules.Registry
	Logger          *slog.Logger
	AllowedOrigins  []string
	SessionDuration time.Duration
	Now             func() time.Time
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	cors := s.withCORS

	mux.HandleFunc("GET /api/v1/health", cors(s.handleHealth))

	mux.HandleFunc("POST /api/v1/auth/login", cors(s.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", cors(withAuth(s, s.handleLogout, "auth:logout")))
	mux.HandleFunc("GET /api/v1/me", cors(withAuth(s, s.handleMe, "me")))

	mux.HandleFunc("GET /api/v1/runs", cors(s.handleListRuns))
	mux.HandleFunc("GET /api/v1/runs/latest", cors(s.handleGetLatest))
	mux.HandleFunc("GET /api/v1/runs/{id}", cors(s.handleGetRun))
	mux.HandleFunc("GET /api/v1/runs/{id}/findings", cors(s.handleListFindings))

	mux.HandleFunc("GET /api/v1/rules", cors(s.handleRules))

	mux.HandleFunc("GET /api/v1/waivers", cors(withAuth(s, s.handleListWaivers, "waivers:list")))
	mux.HandleFunc("POST /api/v1/waivers", cors(withAdmin(s, s.handleCreateWaiver, "waivers:create")))
	mux.HandleFunc("POST /api/v1/waivers/{id}/revoke", cors(withAdmin(s, s.handleRevokeWaiver, "waivers:revoke")))

	mux.HandleFunc("/", cors(func(w http.ResponseWriter, r *http.Request) {
		s.err(w, http.StatusNotFound, "not found")
	}))
	return withRequestLog(s.logger(), mux)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"timestamp":  s.now().UTC(),
		"ir_version": ir.Version,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := max(parseInt(q.Get("offset"), 0), 0)

	rows, err := s.DB.ListRuns(limit, offset)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	if rows == nil {
		rows = []storage.RunRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadLatestRun()
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadRun(r.PathValue("id"))
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GET /api/v1/runs/{id}/findings?bucket=errors|warnings|info
func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bucket := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("bucket")))
	if bucket != "" && !isBucket(bucket) {
		s.err(w, http.StatusBadRequest, "bucket must be errors, warnings or info")
		return
	}
	items, err := s.DB.ListFindings(id, bucket)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": id, "bucket": bucket, "items": items,
	})
}

// GET /api/v1/rules lists the registry in evaluation order.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		Key         string `json:"key"`
		Category    string `json:"category"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
	}
	out := []R{}
	if s.Registry != nil {
		for _, rr := range s.Registry.Rules() {
			out = append(out, R{
				Key:         rr.Key,
				Category:    rr.Category(),
				Severity:    string(rr.Severity),
				Description: rr.Description,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// dbErr maps storage.ErrNotFound to 404 and anything else to 500.
func (s *Server) dbErr(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.err(w, http.StatusNotFound, "not found")
		return
	}
	s.logger().Error("db error", "err", err)
	s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func isBucket(b string) bool {
	for _, k := range ir.Buckets {
		if string(k) == b {
			return true
		}
	}
	return false
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
