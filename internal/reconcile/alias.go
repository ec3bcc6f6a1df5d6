package reconcile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// defaultAliases maps alternate country spellings found in the source
// datasets to the canonical name used as the merge key.
var defaultAliases = map[string]string{
	"United States":                          "United States of America",
	"United States Virgin Islands":           "United States of America",
	"USA":                                    "United States of America",
	"US":                                     "United States of America",
	"United Kingdom":                         "United Kingdom",
	"UK":                                     "United Kingdom",
	"Great Britain":                          "United Kingdom",
	"Brunei Darussalam":                      "Brunei",
	"Bolivia, Plurinational State Of":        "Bolivia",
	"Cabo Verde":                             "Cape Verde",
	"Congo (Brazzaville)":                    "Republic of the Congo",
	"Congo (Kinshasa)":                       "Democratic Republic of the Congo",
	"Dr Congo":                               "Democratic Republic of the Congo",
	"Congo":                                  "Democratic Republic of the Congo",
	"Congo, Democratic Republic Of":          "Democratic Republic of the Congo",
	"Congo, Republic Of":                     "Republic of the Congo",
	"Congo, The Democratic Republic Of The":  "Democratic Republic of the Congo",
	"Korea, Republic of":                     "South Korea",
	"Korea, Democratic People's Republic Of": "North Korea",
	"Russian Federation":                     "Russia",
	"Ivory Coast":                            "Côte d'Ivoire",
	"Cote D'Ivoire":                          "Côte d'Ivoire",
	"Czech Republic":                         "Czechia",
	"Moldova, Republic Of":                   "Moldova",
	"Micronesia, Federated States Of":        "Micronesia",
	"Macedonia, The Former Yugoslav Republic Of": "Macedonia",
	"North Macedonia":                   "Macedonia",
	"Lao People's Democratic Republic":  "Laos",
	"Lao People'S Democratic Republic":  "Laos",
	"Republic Of North Macedonia":       "Macedonia",
	"Viet Nam":                          "Vietnam",
	"Turkey":                            "Türkiye",
	"Turkiye":                           "Türkiye",
	"Iran, Islamic Republic Of":         "Iran",
	"Syria":                             "Syrian Arab Republic",
	"Gambia, The":                       "The Gambia",
	"Swaziland":                         "Eswatini",
	"Palestine":                         "State of Palestine",
	"Taiwan Province of China":          "Taiwan",
	"Tanzania, United Republic Of":      "Tanzania",
	"Hong Kong S.A.R. Of China":         "Hong Kong",
	"Venezuela, Bolivarian Republic Of": "Venezuela",
}

// DefaultAliases returns a copy of the built-in alias set.
func DefaultAliases() map[string]string {
	out := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		out[k] = v
	}
	return out
}

// AliasTable is a read-only mapping from raw country spellings to canonical
// names. It is built once and never mutated, so it is safe for concurrent
// lookups.
type AliasTable struct {
	entries map[string]string
}

// NewAliasTable copies m into a new table.
func NewAliasTable(m map[string]string) *AliasTable {
	entries := make(map[string]string, len(m))
	for k, v := range m {
		entries[k] = v
	}
	return &AliasTable{entries: entries}
}

// DefaultAliasTable returns a table over the built-in alias set.
func DefaultAliasTable() *AliasTable {
	return NewAliasTable(defaultAliases)
}

// Lookup returns the canonical name for raw. Matching is exact and
// case-sensitive.
func (a *AliasTable) Lookup(raw string) (string, bool) {
	if a == nil {
		return "", false
	}
	c, ok := a.entries[raw]
	return c, ok
}

// Len returns the number of aliases.
func (a *AliasTable) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Alias is a single raw -> canonical entry.
type Alias struct {
	Raw       string `json:"raw" yaml:"raw"`
	Canonical string `json:"canonical" yaml:"canonical"`
}

// Entries returns all aliases sorted by raw spelling.
func (a *AliasTable) Entries() []Alias {
	if a == nil {
		return nil
	}
	out := make([]Alias, 0, len(a.entries))
	for raw, canonical := range a.entries {
		out = append(out, Alias{Raw: raw, Canonical: canonical})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

// aliasFile is the on-disk layout of an alias file:
//
//	extend_defaults: true
//	aliases:
//	  "Republic of Korea": South Korea
type aliasFile struct {
	ExtendDefaults bool              `yaml:"extend_defaults"`
	Aliases        map[string]string `yaml:"aliases"`
}

// LoadAliasFile reads a YAML alias file. When the file sets extend_defaults,
// its entries are layered over the built-in set; otherwise the file replaces it.
func LoadAliasFile(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}

	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}

	merged := make(map[string]string)
	if f.ExtendDefaults {
		merged = DefaultAliases()
	}
	for raw, canonical := range f.Aliases {
		if canonical == "" {
			return nil, fmt.Errorf("alias file %s: empty canonical name for %q", path, raw)
		}
		merged[raw] = canonical
	}
	return NewAliasTable(merged), nil
}
