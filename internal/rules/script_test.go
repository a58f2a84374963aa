package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasStatement(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"", false},
		{"   \n\t\r\n", false},
		{"// only a comment", false},
		{"/* block */ // and line\n", false},
		{"/* unterminated", false},
		{"\xEF\xBB\xBF// bom then comment", false},
		{"#!/usr/bin/env node\n", false},
		{"#!/usr/bin/env node\nmain();", true},
		{"import { world } from \"@minecraft/server\";", true},
		{"/* a */ x", true},
		{"/ 2", true},
		{"// c\r\nlet a;", true},
		{"/**/;", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, HasStatement([]byte(tt.src)), "%q", tt.src)
	}
}

func FuzzHasStatement(f *testing.F) {
	for _, s := range []string{"", "//", "/*", "*/", "a", "/* */ b", "#!x\ny", "\xEF\xBB\xBF"} {
		f.Add([]byte(s))
	}
	f.Fuzz(func(t *testing.T, src []byte) {
		got := HasStatement(src)
		// Prefixing a comment never changes the answer.
		if HasStatement(append([]byte("/* c */\n"), src...)) != got && !startsWithShebangOrBOM(src) {
			t.Fatalf("comment prefix changed result for %q", src)
		}
	})
}

func startsWithShebangOrBOM(src []byte) bool {
	return (len(src) >= 2 && src[0] == '#' && src[1] == '!') ||
		(len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF)
}
