package analyze

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// WriteCSV renders summary rows as CSV, one column per breakdown plus a
// list/count column pair per sharing dimension. List cells join on "; ".
func WriteCSV(w io.Writer, field string, rows []Row) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Field_" + field,
		"publishers",
		"prefixes",
		"members",
		"institution_name",
		"group_title",
		"primary_domain",
		"primary_domain_extend",
		"doi_prefix_first_token",
		"validation_status",
		"rule_id",
		"year",
		"associated_with_institution",
		"institution_name_count",
		"group_title_count",
		"example_urls",
		"example_dois",
		"preprint_works",
	}
	for _, d := range Dimensions {
		header = append(header, "servers_sharing_"+string(d), "servers_sharing_"+string(d)+"_count")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		cells := []string{
			row.Key,
			joinList(row.Publishers),
			joinList(row.Prefixes),
			joinList(row.Members),
			joinList(row.InstitutionNames),
			joinList(row.GroupTitles),
			joinList(row.PrimaryDomains),
			joinList(row.PrimaryDomainExtends),
			joinList(row.DOIPrefixFirstTokens),
			joinList(row.ValidationStatuses),
			joinList(row.RuleIDs),
			joinList(row.Years),
			strconv.FormatBool(row.HasInstitution),
			strconv.Itoa(row.InstitutionNameCount),
			strconv.Itoa(row.GroupTitleCount),
			joinList(row.ExampleURLs),
			joinList(row.ExampleDOIs),
			strconv.Itoa(row.PreprintWorks),
		}
		for _, d := range Dimensions {
			cells = append(cells, joinList(row.Sharing[d]), strconv.Itoa(row.SharingCount(d)))
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func joinList(values []string) string {
	return strings.Join(values, "; ")
}
