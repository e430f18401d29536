package text

import (
	"errors"
	"strings"
	"testing"
)

func TestSubstituteRanges(t *testing.T) {
	alphabet := "abcdefghijklmnopqrstuvwxyz"

	tests := []struct {
		name   string
		text   string
		ranges []SubstRange
		want   string
	}{
		{
			name: "Empty",
			text: alphabet,
			want: alphabet,
		},
		{
			name:   "Sorted",
			text:   alphabet,
			ranges: []SubstRange{{1, 4, "SPAM"}, {10, 11, "EGGS"}},
			want:   "aSPAMefghijEGGSlmnopqrstuvwxyz",
		},
		{
			name:   "Unsorted",
			text:   alphabet,
			ranges: []SubstRange{{10, 11, "EGGS"}, {1, 4, "SPAM"}},
			want:   "aSPAMefghijEGGSlmnopqrstuvwxyz",
		},
		{
			name:   "Insertion",
			text:   "ab",
			ranges: []SubstRange{{1, 1, "X"}},
			want:   "aXb",
		},
		{
			name:   "Adjacent",
			text:   "abcdef",
			ranges: []SubstRange{{0, 2, "X"}, {2, 4, "Y"}},
			want:   "XYef",
		},
		{
			name:   "WholeText",
			text:   "abc",
			ranges: []SubstRange{{0, 3, "xyz"}},
			want:   "xyz",
		},
		{
			name:   "ShrinkAndGrow",
			text:   `version = "1.2.0"`,
			ranges: []SubstRange{{11, 16, "1.10.0"}},
			want:   `version = "1.10.0"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubstituteRanges(tt.text, tt.ranges, false)
			if err != nil {
				t.Fatalf("SubstituteRanges: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstituteRangesErrors(t *testing.T) {
	tests := []struct {
		name      string
		ranges    []SubstRange
		wantIndex int
		overlap   bool
	}{
		{
			name:      "Overlap",
			ranges:    []SubstRange{{1, 4, "SPAM"}, {3, 5, "EGGS"}},
			wantIndex: 1,
			overlap:   true,
		},
		{
			name:      "OverlapUnsorted",
			ranges:    []SubstRange{{3, 5, "EGGS"}, {1, 4, "SPAM"}},
			wantIndex: 1,
			overlap:   true,
		},
		{
			name:      "Reversed",
			ranges:    []SubstRange{{4, 1, "X"}},
			wantIndex: 0,
		},
		{
			name:      "OutOfBounds",
			ranges:    []SubstRange{{0, 100, "X"}},
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SubstituteRanges("abcdefghij", tt.ranges, false)
			var re *RangeError
			if !errors.As(err, &re) {
				t.Fatalf("want *RangeError, got %v", err)
			}
			if re.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", re.Index, tt.wantIndex)
			}
			if re.Overlap != tt.overlap {
				t.Errorf("overlap = %v, want %v", re.Overlap, tt.overlap)
			}
		})
	}
}

// Content outside the replaced ranges must survive byte for byte, and the
// replacements must be recoverable at their new offsets.
func TestSubstituteRangesRoundTrip(t *testing.T) {
	in := "name = \"pkg-a\"\nversion = \"0.4.1\"\ndeps = [\"pkg-b ^0.4.1\"]\n"
	ranges := []SubstRange{{26, 31, "0.5.0"}, {49, 54, "0.5.0"}}

	out, err := SubstituteRanges(in, ranges, true)
	if err != nil {
		t.Fatalf("SubstituteRanges: %v", err)
	}

	shift := 0
	for _, r := range ranges {
		start := r.Start + shift
		if got := out[start : start+len(r.Replacement)]; got != r.Replacement {
			t.Errorf("replacement at %d = %q, want %q", start, got, r.Replacement)
		}
		shift += len(r.Replacement) - (r.End - r.Start)
	}
	if !strings.HasPrefix(out, in[:26]) {
		t.Error("prefix before first range was modified")
	}
	if !strings.HasSuffix(out, in[54:]) {
		t.Error("suffix after last range was modified")
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   [][]string
		want []string
	}{
		{"Shared", [][]string{{"ns", "a"}, {"ns", "b"}}, []string{"ns"}},
		{"Identical", [][]string{{"pkg"}, {"pkg"}}, []string{"pkg"}},
		{"Disjoint", [][]string{{"a"}, {"b"}}, nil},
		{"Deep", [][]string{{"ns", "sub", "a"}, {"ns", "sub", "b"}, {"ns", "sub"}}, []string{"ns", "sub"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommonPrefix(tt.in...)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
