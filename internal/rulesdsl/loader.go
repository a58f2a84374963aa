package rulesdsl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/minepack/internal/addon"
	"github.com/codewithboateng/minepack/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	Key         string `yaml:"key"`      // "<category>/<name>"
	Severity    string `yaml:"severity"` // error|warning|info
	Description string `yaml:"description"`
	Message     string `yaml:"message"` // optional; overrides the generated message

	Where struct {
		Package string `yaml:"package"` // behavior|resource|any (default any)
		Glob    string `yaml:"glob"`    // doublestar pattern relative to the package root
	} `yaml:"where"`

	Require struct {
		Key         string `yaml:"key"`          // slash-separated JSON object path that must exist
		ForbidRegex string `yaml:"forbid_regex"` // file content must not match
		MaxBytes    int64  `yaml:"max_bytes"`
	} `yaml:"require"`
}

type compiled struct {
	rule     dslRule
	severity rules.Severity
	side     *addon.Side
	keyPath  []string
	reForbid *regexp.Regexp
}

// LoadInto reads a YAML rule pack and appends its rules to reg, after the
// rules already registered. It returns how many rules were added.
func LoadInto(path string, reg *rules.Registry) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	var n int
	for _, r := range pack.Rules {
		c, err := compile(r)
		if err != nil {
			return n, fmt.Errorf("compile rule %q: %w", r.Key, err)
		}
		if err := reg.Add(c.toRule()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func compile(r dslRule) (*compiled, error) {
	if r.Key == "" || r.Severity == "" || r.Where.Glob == "" {
		return nil, errors.New("missing required fields (key/severity/where.glob)")
	}
	sev, err := rules.ParseSeverity(r.Severity)
	if err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(r.Where.Glob) {
		return nil, fmt.Errorf("invalid glob %q", r.Where.Glob)
	}
	c := &compiled{rule: r, severity: sev}
	switch strings.ToLower(strings.TrimSpace(r.Where.Package)) {
	case "", "any":
	case "behavior", "bp":
		s := addon.Behavior
		c.side = &s
	case "resource", "rp":
		s := addon.Resource
		c.side = &s
	default:
		return nil, fmt.Errorf("unknown package %q", r.Where.Package)
	}
	if k := strings.Trim(r.Require.Key, "/"); k != "" {
		c.keyPath = strings.Split(k, "/")
	}
	if r.Require.ForbidRegex != "" {
		re, err := regexp.Compile(r.Require.ForbidRegex)
		if err != nil {
			return nil, fmt.Errorf("forbid_regex: %w", err)
		}
		c.reForbid = re
	}
	if c.keyPath == nil && c.reForbid == nil && r.Require.MaxBytes <= 0 {
		return nil, errors.New("rule has no require clause")
	}
	return c, nil
}

func (c compiled) toRule() rules.Rule {
	desc := c.rule.Description
	if desc == "" {
		desc = "Custom rule matching " + c.rule.Where.Glob
	}
	return rules.Rule{
		Key:         c.rule.Key,
		Severity:    c.severity,
		Description: desc,
		Apply:       c.apply,
	}
}

func (c compiled) apply(ctx rules.Context) ([]rules.Finding, error) {
	var out []rules.Finding
	for _, p := range ctx.Packages() {
		if c.side != nil && *c.side != p.Side {
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(p.Root), c.rule.Where.Glob, doublestar.WithFilesOnly())
		if err != nil {
			return out, fmt.Errorf("glob %s: %w", c.rule.Where.Glob, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			file := filepath.Join(p.Root, filepath.FromSlash(m))
			f, err := c.check(file)
			if err != nil {
				return out, err
			}
			out = append(out, f...)
		}
	}
	return out, nil
}

func (c compiled) check(file string) ([]rules.Finding, error) {
	var out []rules.Finding
	report := func(generated string) {
		msg := generated
		if c.rule.Message != "" {
			msg = c.rule.Message
		}
		out = append(out, rules.Finding{File: file, Message: msg})
	}

	st, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if limit := c.rule.Require.MaxBytes; limit > 0 && st.Size() > limit {
		report(fmt.Sprintf("file is %d bytes, limit is %d", st.Size(), limit))
	}
	if c.reForbid != nil {
		b, err := os.ReadFile(file)
		if err != nil {
			return out, err
		}
		if c.reForbid.Match(b) {
			report(fmt.Sprintf("content matches forbidden pattern %q", c.rule.Require.ForbidRegex))
		}
	}
	if c.keyPath != nil {
		data, err := addon.LoadJSON(file)
		var derr *addon.DecodeError
		switch {
		case errors.As(err, &derr):
			report(fmt.Sprintf("cannot check key %q: %v", strings.Join(c.keyPath, "/"), derr.Err))
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return out, err
		default:
			if _, ok := addon.Lookup(data, c.keyPath...); !ok {
				report(fmt.Sprintf("missing required key %q", strings.Join(c.keyPath, "/")))
			}
		}
	}
	return out, nil
}
