// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"zero max", "hello", 0, ""},
		{"tiny max no ellipsis", "hello", 2, "he"},
		{"multibyte safe", "héllo wörld", 8, "héllo..."},
		{"cjk safe", "日本語のテキスト", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		wantMax  int
	}{
		{"ascii fits", "hello", 10, 5},
		{"ascii truncated", "hello world", 8, 8},
		{"cjk double width", "日本語テキスト", 8, 8},
		{"zero width", "hello", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.maxWidth)
			if w := StringWidth(got); w > tt.wantMax {
				t.Errorf("TruncateWidth(%q, %d) has width %d, want <= %d", tt.input, tt.maxWidth, w, tt.wantMax)
			}
		})
	}
}

func TestPadWidth(t *testing.T) {
	got := PadWidth("ab", 5)
	if StringWidth(got) != 5 {
		t.Errorf("PadWidth width = %d, want 5", StringWidth(got))
	}
	got = PadWidth("hello world", 5)
	if StringWidth(got) != 5 {
		t.Errorf("PadWidth of long string width = %d, want 5", StringWidth(got))
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"single line", "single line"},
		{"first\nsecond", "first"},
		{"  padded  \nnext", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FirstLine(tt.input); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "document", "documents"); got != "document" {
		t.Errorf("Pluralize(1) = %q", got)
	}
	if got := Pluralize(3, "document", "documents"); got != "documents" {
		t.Errorf("Pluralize(3) = %q", got)
	}
	if got := Pluralize(0, "document", "documents"); got != "documents" {
		t.Errorf("Pluralize(0) = %q", got)
	}
}
