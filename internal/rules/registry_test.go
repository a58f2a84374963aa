package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noop(Context) ([]Finding, error) { return nil, nil }

func TestRegistry_AddKeepsOrderAndRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(Rule{Key: "b/second", Severity: SeverityError, Apply: noop}))
	require.NoError(t, reg.Add(Rule{Key: "a/first", Severity: SeverityInfo, Apply: noop}))

	err := reg.Add(Rule{Key: "b/second", Severity: SeverityWarning, Apply: noop})
	require.ErrorContains(t, err, "already registered")
	require.Equal(t, []string{"b/second", "a/first"}, reg.Keys())

	r, ok := reg.Get("b/second")
	require.True(t, ok)
	require.Equal(t, SeverityError, r.Severity)
}

func TestRegistry_RejectsMalformedRules(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		name string
		rule Rule
	}{
		{"no slash", Rule{Key: "nocategory", Severity: SeverityError, Apply: noop}},
		{"empty name", Rule{Key: "cat/", Severity: SeverityError, Apply: noop}},
		{"bad severity", Rule{Key: "cat/x", Severity: "FATAL", Apply: noop}},
		{"nil apply", Rule{Key: "cat/y", Severity: SeverityWarning}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, reg.Add(tt.rule))
		})
	}
	require.Zero(t, reg.Len())
}

func TestRegistry_ReplaceAndRemove(t *testing.T) {
	reg := NewRegistry()
	for _, k := range []string{"a/1", "a/2", "a/3"} {
		reg.MustAdd(Rule{Key: k, Severity: SeverityWarning, Apply: noop})
	}
	require.NoError(t, reg.Replace(Rule{Key: "a/2", Severity: SeverityError, Description: "new", Apply: noop}))
	require.Error(t, reg.Replace(Rule{Key: "a/9", Severity: SeverityError, Apply: noop}))

	rs := reg.Rules()
	require.Equal(t, "a/2", rs[1].Key)
	require.Equal(t, "new", rs[1].Description)

	require.True(t, reg.Remove("a/1"))
	require.False(t, reg.Remove("a/1"))
	require.Equal(t, []string{"a/2", "a/3"}, reg.Keys())
}

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry(nil)
	require.Equal(t, []string{
		"manifest/has-modules",
		"manifest/has-description",
		"manifest/dependencies-exist",
		"json/has-format-version",
		"json/valid-format-version",
		"json/valid-top-level-key",
		"json/not-empty-or-corrupt",
		"id/valid-names",
		"id/no-duplicate-filenames",
		"id/namespace-whitelist",
		"texture/exists",
		"fs/no-junk-root-files",
		"fs/unexpected-top-level-files",
		"script/entry-not-empty",
	}, reg.Keys())

	for _, r := range reg.Rules() {
		require.True(t, r.Severity.Valid(), r.Key)
		require.NotEmpty(t, r.Description, r.Key)
		require.NotNil(t, r.Apply, r.Key)
	}
	r, _ := reg.Get("json/valid-format-version")
	require.Equal(t, SeverityWarning, r.Severity)
	require.Equal(t, "json", r.Category())
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{
		"error": SeverityError, "ERR": SeverityError,
		" Warning ": SeverityWarning, "warn": SeverityWarning,
		"info": SeverityInfo,
	} {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseSeverity("fatal")
	require.Error(t, err)
}

func TestFormatVersionsMerge(t *testing.T) {
	base := DefaultFormatVersions()
	merged := base.Merge(map[string][]string{
		"item":       {"1.20.0", "1.21.0"},
		"attachable": {"1.10.0"},
	})
	require.True(t, merged.Known("item", "1.21.0"))
	require.True(t, merged.Known("attachable", "1.10.0"))
	require.Equal(t, []string{"1.16.100", "1.20.0", "1.21.0"}, merged["item"])
	require.False(t, base.Known("item", "1.21.0"), "Merge must not modify the receiver")
}
