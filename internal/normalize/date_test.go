package normalize

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDateAt_RelativeKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"today", "2025-06-15"},
		{"Aujourd'hui", "2025-06-15"},
		{"yesterday", "2025-06-14"},
		{"hier", "2025-06-14"},
	}
	for _, tt := range tests {
		got := DateAt(testNow, tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("DateAt(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateAt_RelativeQuantities(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3 days ago", "2025-06-12"},
		{"1 day ago", "2025-06-14"},
		{"il y a 2 semaines", "2025-06-01"},
		{"2 weeks ago", "2025-06-01"},
		{"1 month ago", "2025-05-16"}, // months approximate to 30 days
		{"5 hours ago", "2025-06-15"},
		{"30 hours ago", "2025-06-14"},
	}
	for _, tt := range tests {
		got := DateAt(testNow, tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("DateAt(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateAt_AbsoluteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-05-09", "2025-05-09"},
		{"20-05-2025", "2025-05-20"},
		{"20/05/2025", "2025-05-20"},
		{"2025/05/20", "2025-05-20"},
		{"May 3, 2024", "2024-05-03"},
		{"3 May 2024", "2024-05-03"},
		{"December 1, 2024", "2024-12-01"},
	}
	for _, tt := range tests {
		got := DateAt(testNow, tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("DateAt(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateAt_PartialAssumesCurrentYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 May-12:53", "2025-05-01"},
		{"10 Apr-10:20", "2025-04-10"},
		{"15 janvier", "2025-01-15"},
		{"3 September", "2025-09-03"},
	}
	for _, tt := range tests {
		got := DateAt(testNow, tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("DateAt(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateAt_UnparseableReturnsNil(t *testing.T) {
	for _, in := range []string{"", "   ", "gibberish", "31 Feb-10:00", "soon"} {
		if got := DateAt(testNow, in); got != nil {
			t.Errorf("DateAt(%q) = %q, want nil", in, *got)
		}
	}
}
