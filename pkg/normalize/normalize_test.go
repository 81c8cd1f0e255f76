package normalize

import (
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name lowercased",
			input: "TechRxiv",
			want:  "techrxiv",
		},
		{
			name:  "accents folded",
			input: "Universität zu Köln",
			want:  "universitat zu koln",
		},
		{
			name:  "punctuation becomes spaces",
			input: "Earth & Space Science (Open Archive)",
			want:  "earth space science open archive",
		},
		{
			name:  "whitespace collapsed",
			input: "  Center   for\tOpen   Science  ",
			want:  "center for open science",
		},
		{
			name:  "underscore and digits kept",
			input: "osf_io 2024",
			want:  "osf_io 2024",
		},
		{
			name:  "unfoldable non-ascii dropped",
			input: "研究 Preprints",
			want:  "preprints",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "---///...",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Running the output back through must be a no-op.
			if again := Name(got); again != got {
				t.Errorf("Name not idempotent: Name(%q) = %q", got, again)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "https URL",
			input: "https://www.biorxiv.org/content/10.1101/2024.01.12",
			want:  "biorxiv.org",
		},
		{
			name:  "uppercase host",
			input: "HTTPS://OSF.IO/abcde",
			want:  "osf.io",
		},
		{
			name:  "subdomain kept",
			input: "https://apsa.preprints.org/papers/1",
			want:  "apsa.preprints.org",
		},
		{
			name:  "no host",
			input: "not a url",
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
			if got := Domain(tt.input); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDomainExtend(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "host plus first segment",
			input: "https://osf.io/preprints/socarxiv/abcde",
			want:  "osf.io/preprints",
		},
		{
			name:  "bare host",
			input: "https://biorxiv.org",
			want:  "biorxiv.org",
		},
		{
			name:  "trailing slash only",
			input: "https://biorxiv.org/",
			want:  "biorxiv.org",
		},
		{
			name:  "www stripped",
			input: "https://www.protocols.io/view/x",
			want:  "protocols.io/view",
		},
		{
			name:  "no host",
			input: "garbage",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainExtend(tt.input); got != tt.want {
				t.Errorf("DomainExtend(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
