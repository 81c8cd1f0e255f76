package normalize

import (
	"testing"
)

func TestDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare DOI",
			input: "10.1101/2024.01.12.575796",
			want:  "10.1101/2024.01.12.575796",
		},
		{
			name:  "resolver URL",
			input: "https://doi.org/10.1234/AbC.1",
			want:  "10.1234/abc.1",
		},
		{
			name:  "doi URI scheme",
			input: "doi:10.31234/osf.io/abcde",
			want:  "10.31234/osf.io/abcde",
		},
		{
			name:  "surrounding whitespace",
			input: "  10.5194/hess-2024-123  ",
			want:  "10.5194/hess-2024-123",
		},
		{
			name:  "not a DOI",
			input: "https://example.com/article/42",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOI(tt.input); got != tt.want {
				t.Errorf("DOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitDOI(t *testing.T) {
	prefix, suffix := SplitDOI("10.1101/2024.01.12.575796")
	if prefix != "10.1101" || suffix != "2024.01.12.575796" {
		t.Errorf("SplitDOI() = (%q, %q), want (10.1101, 2024.01.12.575796)", prefix, suffix)
	}

	if prefix, suffix = SplitDOI("garbage"); prefix != "" || suffix != "" {
		t.Errorf("SplitDOI(garbage) = (%q, %q), want empty", prefix, suffix)
	}
}

func TestSuffixFirstToken(t *testing.T) {
	tests := []struct {
		name        string
		suffix      string
		numericKeep int
		want        string
	}{
		{
			name:        "letter run before dot",
			suffix:      "osf.io/abcde",
			numericKeep: DefaultNumericKeep,
			want:        "osf",
		},
		{
			name:        "letter run with trailing hyphen",
			suffix:      "hess-2024-123",
			numericKeep: DefaultNumericKeep,
			want:        "hess-",
		},
		{
			name:        "numeric segment truncated",
			suffix:      "2024.01.12.575796",
			numericKeep: DefaultNumericKeep,
			want:        "20",
		},
		{
			name:        "numeric segment kept short",
			suffix:      "11.2017",
			numericKeep: DefaultNumericKeep,
			want:        "11",
		},
		{
			name:        "truncation disabled",
			suffix:      "2024.01.12",
			numericKeep: 0,
			want:        "2024",
		},
		{
			name:        "whole suffix is the token",
			suffix:      "unisarxiv",
			numericKeep: DefaultNumericKeep,
			want:        "unisarxiv",
		},
		{
			name:        "letter run before unusual byte keeps the run",
			suffix:      "abc(v2)",
			numericKeep: DefaultNumericKeep,
			want:        "abc",
		},
		{
			name:        "separator-initial suffix has no token",
			suffix:      "-abc",
			numericKeep: DefaultNumericKeep,
			want:        "",
		},
		{
			name:        "empty suffix",
			suffix:      "",
			numericKeep: DefaultNumericKeep,
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuffixFirstToken(tt.suffix, tt.numericKeep); got != tt.want {
				t.Errorf("SuffixFirstToken(%q, %d) = %q, want %q",
					tt.suffix, tt.numericKeep, got, tt.want)
			}
		})
	}
}

func TestDOIPrefixFirstToken(t *testing.T) {
	tests := []struct {
		name string
		doi  string
		want string
	}{
		{
			name: "osf style",
			doi:  "10.31234/osf.io/abcde",
			want: "10.31234/osf",
		},
		{
			name: "hyphenated journal code",
			doi:  "10.5194/hess-2024-123",
			want: "10.5194/hess-",
		},
		{
			name: "numeric suffix",
			doi:  "10.1101/2024.01.12.575796",
			want: "10.1101/20",
		},
		{
			name: "no prefix",
			doi:  "not-a-doi",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOIPrefixFirstToken(tt.doi, DefaultNumericKeep); got != tt.want {
				t.Errorf("DOIPrefixFirstToken(%q) = %q, want %q", tt.doi, got, tt.want)
			}
		})
	}
}
