package reconcile

import (
	"strings"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// Normalizer canonicalizes country identifiers against an injected alias table.
//
// Lookups are exact after trimming surrounding whitespace: "  USA " resolves,
// "usa" and "United  States" do not.
type Normalizer struct {
	aliases *AliasTable
}

// NewNormalizer returns a Normalizer over aliases. A nil table normalizes by
// trimming only.
func NewNormalizer(aliases *AliasTable) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Aliases returns the table the normalizer was built with.
func (n *Normalizer) Aliases() *AliasTable {
	return n.aliases
}

// NormalizeString trims raw and maps it through the alias table.
func (n *Normalizer) NormalizeString(raw string) string {
	s := strings.TrimSpace(raw)
	if canonical, ok := n.aliases.Lookup(s); ok {
		return canonical
	}
	return s
}

// Normalize applies NormalizeString to a cell. Missing stays missing; a
// numeric cell is normalized through its text form and comes back as text.
func (n *Normalizer) Normalize(v dataset.Value) dataset.Value {
	if v.IsMissing() {
		return v
	}
	return dataset.Text(n.NormalizeString(v.String()))
}
