package analyze

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// testBatch is a small resolved batch where Alpha and Beta share a hosting
// domain but nothing else.
func testBatch() []canonical.Record {
	return []canonical.Record{
		{
			ValidatedServerName: "Alpha Preprints",
			Publisher:           "Alpha Press",
			Prefix:              "10.1111",
			PrimaryDomain:       "shared.example.org",
			DOIPrefixFirstToken: "10.1111/alpha",
			Subtype:             "preprint",
			DOI:                 "10.1111/alpha.1",
			PrimaryURL:          "https://shared.example.org/alpha/1",
			PublicationYear:     2023,
		},
		{
			ValidatedServerName: "Alpha Preprints",
			Publisher:           "Alpha Press",
			Prefix:              "10.1111",
			PrimaryDomain:       "shared.example.org",
			DOIPrefixFirstToken: "10.1111/alpha",
			Subtype:             "preprint",
			DOI:                 "10.1111/alpha.2",
			PrimaryURL:          "https://shared.example.org/alpha/2",
			PublicationYear:     2024,
		},
		{
			ValidatedServerName: "Beta Archive",
			Publisher:           "Beta Foundation",
			Prefix:              "10.2222",
			PrimaryDomain:       "shared.example.org",
			DOIPrefixFirstToken: "10.2222/beta",
			Subtype:             "preprint",
			DOI:                 "10.2222/beta.1",
			PrimaryURL:          "https://shared.example.org/beta/1",
			PublicationYear:     2024,
		},
		{
			// Unresolved record: counts toward its group but never toward
			// the sharing maps.
			Publisher:     "Gamma Press",
			Prefix:        "10.3333",
			PrimaryDomain: "gamma.example.org",
			Subtype:       "journal-article",
			DOI:           "10.3333/g.1",
		},
	}
}

func TestBuildSharingMaps(t *testing.T) {
	maps := BuildSharingMaps(testBatch())

	shared := maps[DimPrimaryDomain]["shared.example.org"]
	want := []string{"Alpha Preprints", "Beta Archive"}
	if strings.Join(shared, "|") != strings.Join(want, "|") {
		t.Errorf("servers sharing domain = %v, want %v", shared, want)
	}

	if names := maps[DimPrefix]["10.1111"]; len(names) != 1 || names[0] != "Alpha Preprints" {
		t.Errorf("servers sharing prefix 10.1111 = %v", names)
	}

	// The unresolved record must not leak its signals in.
	if names := maps[DimPrimaryDomain]["gamma.example.org"]; names != nil {
		t.Errorf("unresolved record contributed %v", names)
	}
}

func TestServersSharingUnion(t *testing.T) {
	maps := BuildSharingMaps(testBatch())

	union := maps.ServersSharing(DimPrefix, []string{"10.1111", "10.2222"})
	want := []string{"Alpha Preprints", "Beta Archive"}
	if strings.Join(union, "|") != strings.Join(want, "|") {
		t.Errorf("union = %v, want %v", union, want)
	}

	if got := maps.ServersSharing(DimPrefix, []string{"10.9999"}); got != nil {
		t.Errorf("unknown value returned %v", got)
	}
}

func TestSummarize(t *testing.T) {
	rows, err := Summarize(testBatch(), "validated_server_name", Options{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Descending by preprint works, key-ascending on ties; the unresolved
	// group lands under MISSING with zero preprint works... except its
	// subtype is journal-article, so it sorts last.
	if rows[0].Key != "Alpha Preprints" || rows[0].PreprintWorks != 2 {
		t.Errorf("rows[0] = %q (%d works)", rows[0].Key, rows[0].PreprintWorks)
	}
	if rows[1].Key != "Beta Archive" || rows[1].PreprintWorks != 1 {
		t.Errorf("rows[1] = %q (%d works)", rows[1].Key, rows[1].PreprintWorks)
	}
	if rows[2].Key != MissingToken {
		t.Errorf("rows[2].Key = %q, want %s", rows[2].Key, MissingToken)
	}

	alpha := rows[0]
	if len(alpha.Publishers) != 1 || alpha.Publishers[0] != "Alpha Press (2)" {
		t.Errorf("publishers breakdown = %v", alpha.Publishers)
	}
	if len(alpha.ExampleDOIs) != 2 {
		t.Errorf("example DOIs = %v", alpha.ExampleDOIs)
	}

	sharing := alpha.Sharing[DimPrimaryDomain]
	if len(sharing) != 2 {
		t.Errorf("alpha shares its domain with %v, want two identities", sharing)
	}
}

func TestSummarizeUnknownField(t *testing.T) {
	if _, err := Summarize(testBatch(), "no_such_field", Options{}); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestSummarizeExamplesBounded(t *testing.T) {
	records := make([]canonical.Record, 30)
	for i := range records {
		records[i] = canonical.Record{
			ValidatedServerName: "Alpha Preprints",
			DOI:                 "10.1111/alpha." + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Subtype:             "preprint",
		}
	}

	rows, err := Summarize(records, "validated_server_name", Options{ExamplesK: 5})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(rows[0].ExampleDOIs) != 5 {
		t.Errorf("got %d example DOIs, want 5", len(rows[0].ExampleDOIs))
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	batch := testBatch()

	first, err := Summarize(batch, "primary_domain", Options{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	for run := 0; run < 3; run++ {
		again, err := Summarize(batch, "primary_domain", Options{})
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("row count changed between runs")
		}
		for i := range first {
			if again[i].Key != first[i].Key {
				t.Fatalf("row order changed: %q vs %q", again[i].Key, first[i].Key)
			}
		}
	}
}

func TestWriteCSV(t *testing.T) {
	rows, err := Summarize(testBatch(), "validated_server_name", Options{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, "validated_server_name", rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(rows)+1)
	}

	if !strings.HasPrefix(lines[0], "Field_validated_server_name,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[0], "servers_sharing_primary_domain_count") {
		t.Errorf("missing sharing count column in %q", lines[0])
	}
	if !strings.Contains(lines[1], "Alpha Preprints; Beta Archive") {
		t.Errorf("sharing list cell missing from %q", lines[1])
	}
}
