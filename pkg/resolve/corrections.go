package resolve

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// Corrections is the static alias-repair table applied after resolution:
// capitalization variants, known-wrong resolutions collapsed to one umbrella
// identity, spelling fixes. Idempotent and total; unmapped names pass
// through unchanged.
type Corrections map[string]string

// DefaultCorrections returns the curated alias table.
func DefaultCorrections() Corrections {
	return Corrections{
		"Techrxiv":         "TechRxiv",
		"agriRxiv":         "AgriRxiv",
		"AgriXiv":          "AgriRxiv",
		"elife":            "eLife",
		"eLife":            "eLife",
		"ESS Open Archive": "Earth and Space Science Open Archive",
		"LawArXiv":         "Law Archive",
		"Instituto Brasileiro de Informação em Ciência e Tecnologia Ibict": "Instituto Brasileiro de Informação em Ciência e Tecnologia (Ibict)",
		"EMERI": "EmeRI",

		// EcoEvoRxiv records surface their subject group as the name.
		"Life Sciences":                     "EcoEvoRxiv",
		"Physical Sciences and Mathematics": "EcoEvoRxiv",
		"Social and Behavioral Sciences":    "EcoEvoRxiv",
	}
}

// LoadCorrections reads a corrections table from a YAML file (name: fixed).
func LoadCorrections(path string) (Corrections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corrections: %w", err)
	}

	c := Corrections{}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse corrections %s: %w", path, err)
	}

	return c, nil
}

// Apply rewrites one name through the table, normalizing whitespace on both
// sides of the lookup. Absent input stays absent.
func (c Corrections) Apply(name string) string {
	name = collapseSpaces(name)
	if name == "" {
		return ""
	}

	if fixed, ok := c[name]; ok {
		name = collapseSpaces(fixed)
	}

	return name
}

// ApplyAll corrects the validated names on a resolved batch, keeping the
// pre-correction name for the diagnostic summaries, and copies the final
// identity into the clean server_name export field. Returns the number of
// records whose name changed.
func (c Corrections) ApplyAll(records []canonical.Record) int {
	changed := 0

	for i := range records {
		rec := &records[i]
		if rec.ValidatedServerName == "" {
			continue
		}

		rec.ValidatedServerNameOld = rec.ValidatedServerName
		rec.ValidatedServerName = c.Apply(rec.ValidatedServerName)
		rec.ServerName = rec.ValidatedServerName

		if rec.ValidatedServerName != rec.ValidatedServerNameOld {
			changed++
		}
	}

	return changed
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
