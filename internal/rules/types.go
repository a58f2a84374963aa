package rules

import (
	"fmt"
	"strings"

	"github.com/codewithboateng/minepack/internal/addon"
)

// Severity is fixed per rule and decides which report bucket its findings
// land in before any override.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// ParseSeverity accepts any casing plus the short forms "warn" and "err".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR", "ERR":
		return SeverityError, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Context is the read-only view of a validation run handed to every rule.
// An empty root means that package is absent.
type Context struct {
	BehaviorRoot string
	ResourceRoot string

	// Namespace is the project's own identifier namespace; empty disables
	// namespace checks. AllowNamespaces are accepted in addition to it.
	Namespace       string
	AllowNamespaces []string
}

// Package is a present package root.
type Package struct {
	Side addon.Side
	Root string
}

// Packages returns the present roots, behavior first.
func (c Context) Packages() []Package {
	var out []Package
	if c.BehaviorRoot != "" {
		out = append(out, Package{Side: addon.Behavior, Root: c.BehaviorRoot})
	}
	if c.ResourceRoot != "" {
		out = append(out, Package{Side: addon.Resource, Root: c.ResourceRoot})
	}
	return out
}

// AnyRoot returns the first present root.
func (c Context) AnyRoot() string {
	if c.BehaviorRoot != "" {
		return c.BehaviorRoot
	}
	return c.ResourceRoot
}

// Finding is one issue reported by a rule against a file.
type Finding struct {
	File    string
	Message string
}

// Rule is a single independent check. Apply must not modify the inspected
// trees and must return the same findings for the same filesystem state.
// A returned error means the rule itself failed, not that the package is bad.
type Rule struct {
	Key         string // "<category>/<name>"
	Severity    Severity
	Description string
	Apply       func(ctx Context) ([]Finding, error)
}

// Category is the part of the key before the first slash.
func (r Rule) Category() string {
	cat, _, _ := strings.Cut(r.Key, "/")
	return cat
}

func findingf(file, format string, args ...any) Finding {
	return Finding{File: file, Message: fmt.Sprintf(format, args...)}
}
