package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btraven00/taripaq/pkg/resolve"
)

var (
	rulesOverridesFlag string
	showOverrides      bool
)

// cascadeRule is one row of the precedence table shown to operators.
type cascadeRule struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Overwrites bool    `json:"overwrites_earlier"`
	When       string  `json:"when"`
}

var cascadeRules = []cascadeRule{
	{resolve.RuleMatchStrong, string(resolve.StatusMatchStrong), resolve.ConfidenceStrong, false,
		"domain and prefix candidates agree and free text corroborates"},
	{resolve.RuleMatchWeak, string(resolve.StatusMatchWeak), resolve.ConfidenceWeak, false,
		"domain and prefix candidates agree without corroboration"},
	{resolve.RuleMatchDomain, string(resolve.StatusMatchDomain), resolve.ConfidenceSingleSide, false,
		"candidates differ; only the domain candidate is corroborated"},
	{resolve.RuleMatchPrefix, string(resolve.StatusMatchPrefix), resolve.ConfidenceSingleSide, false,
		"candidates differ; only the prefix candidate is corroborated"},
	{resolve.RuleLowConfidence, string(resolve.StatusLowConfidenceManual), resolve.ConfidenceManual, false,
		"candidates differ with no corroboration; name withheld for manual review"},
	{resolve.RuleGroupTitle, string(resolve.StatusRule5GroupTitle), resolve.ConfidenceOverride, true,
		"shared-platform domain; the group title is the identity"},
	{resolve.RuleInstitution, string(resolve.StatusRule5Institution), resolve.ConfidenceOverride, true,
		"institutional host; the institution field is the identity"},
	{resolve.RulePubPub, string(resolve.StatusRule5PubPub), resolve.ConfidenceOverride, false,
		"multi-tenant platform sub-domain encodes the identity"},
	{resolve.RulePrefixOverride, string(resolve.StatusRule5PrefixOverride), resolve.ConfidenceOverride2, false,
		"domain on the prefix-trust list; prefix candidate wins"},
	{resolve.RuleDomainOverride, string(resolve.StatusRule5DomainOverride), resolve.ConfidenceOverride2, false,
		"domain on the domain-trust list; domain candidate wins"},
	{resolve.RuleDOIPrefixOverride, string(resolve.StatusRule5DOIPrefixOverride), resolve.ConfidenceOverride2, false,
		"DOI prefix token on the trust list; prefix candidate wins"},
}

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the resolution cascade and its override lists",
	Long: `The rules command prints the rule cascade in precedence order, with the
validation status and confidence score each rule stamps, and optionally the
curated override lists the R5 rules consult.

Examples:
  taripaq rules                       # show the cascade
  taripaq rules --overrides-list      # include the override lists
  taripaq rules --overrides my.yaml   # show lists from a custom file
  taripaq rules --output json         # machine-readable output`,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	overrides := resolve.DefaultOverrides()

	if rulesOverridesFlag != "" {
		var err error
		if overrides, err = resolve.LoadOverrides(rulesOverridesFlag); err != nil {
			return err
		}

		showOverrides = true
	}

	if output == "json" {
		payload := struct {
			Rules     []cascadeRule     `json:"rules"`
			Overrides resolve.Overrides `json:"overrides"`
		}{Rules: cascadeRules, Overrides: overrides}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(payload)
	}

	fmt.Printf("Resolution cascade (%d rules, precedence order):\n\n", len(cascadeRules))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tSTATUS\tCONF\tOVERWRITES\tWHEN")
	fmt.Fprintln(w, "----\t------\t----\t----------\t----")

	for _, r := range cascadeRules {
		overwrites := ""
		if r.Overwrites {
			overwrites = "yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", r.ID, r.Status, r.Confidence, overwrites, r.When)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if showOverrides {
		fmt.Printf("\nOverride lists:\n")
		printList("group_title_domains", overrides.GroupTitleDomains)
		printList("institution_domains", overrides.InstitutionDomains)
		fmt.Printf("  platform_suffix: %s (marker %q)\n", overrides.PlatformSuffix, overrides.PlatformMarker)
		printList("prefix_override_domains", overrides.PrefixOverrideDomains)
		printList("domain_override_domains", overrides.DomainOverrideDomains)
		printList("prefix_override_tokens", overrides.PrefixOverrideTokens)
	}

	return nil
}

func printList(name string, values []string) {
	fmt.Printf("  %s (%d): %s\n", name, len(values), strings.Join(values, ", "))
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVar(&rulesOverridesFlag, "overrides", "", "read override lists from this YAML file")
	rulesCmd.Flags().BoolVar(&showOverrides, "overrides-list", false, "include the override lists in the output")
}
