// Package tabular reads provider batches and writes pipeline outputs in the
// two formats the surrounding tooling speaks: CSV and parquet. Nothing in
// here knows about resolution; it only moves canonical rows.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// ReadRows loads a raw tabular batch (header + rows) into provider rows.
// Short rows are padded with absent values rather than rejected; a single
// ragged line must not abort a batch.
func ReadRows(r io.Reader) ([]canonical.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []canonical.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch row %d: %w", len(rows)+2, err)
		}

		row := make(canonical.Row, len(header))
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			if v := rec[i]; v != "" {
				row[name] = v
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadRowsFile loads a raw batch from a CSV file path.
func ReadRowsFile(path string) ([]canonical.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch: %w", err)
	}
	defer f.Close()

	return ReadRows(f)
}

// cleanColumns is the export column set: the resolved identity plus the
// descriptive fields, with the normalization helpers dropped.
var cleanColumns = []string{
	"record_id",
	"backend",
	"doi",
	"doi_url",
	"server_name",
	"server_id",
	"title",
	"publisher",
	"member",
	"prefix",
	"client_id",
	"institution_name",
	"group_title",
	"type",
	"subtype",
	"primary_url",
	"date_created",
	"date_posted",
	"date_registered",
	"date_published",
	"publication_year",
	"is_oa",
	"oa_status",
}

func cleanValue(rec *canonical.Record, col string) string {
	switch col {
	case "record_id":
		return rec.RecordID
	case "backend":
		return string(rec.Backend)
	case "doi":
		return rec.DOI
	case "doi_url":
		return rec.DOIURL
	case "server_name":
		return rec.ServerName
	case "server_id":
		return rec.ServerID
	case "title":
		return rec.Title
	case "publisher":
		return rec.Publisher
	case "member":
		return rec.Member
	case "prefix":
		return rec.Prefix
	case "client_id":
		return rec.ClientID
	case "institution_name":
		return rec.InstitutionName
	case "group_title":
		return rec.GroupTitle
	case "type":
		return rec.Type
	case "subtype":
		return rec.Subtype
	case "primary_url":
		return rec.PrimaryURL
	case "date_created":
		return rec.DateCreated
	case "date_posted":
		return rec.DatePosted
	case "date_registered":
		return rec.DateRegistered
	case "date_published":
		return rec.DatePublished
	case "publication_year":
		if rec.PublicationYear == 0 {
			return ""
		}
		return strconv.Itoa(int(rec.PublicationYear))
	case "is_oa":
		if rec.IsOA == nil {
			return ""
		}
		return strconv.FormatBool(*rec.IsOA)
	case "oa_status":
		return rec.OAStatus
	}
	return ""
}

// WriteCleanCSV exports the labeled batch with server_name populated and
// the helper columns dropped, matching the downstream-facing schema.
func WriteCleanCSV(w io.Writer, records []canonical.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(cleanColumns); err != nil {
		return err
	}

	cells := make([]string, len(cleanColumns))
	for i := range records {
		for j, col := range cleanColumns {
			cells[j] = cleanValue(&records[i], col)
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
