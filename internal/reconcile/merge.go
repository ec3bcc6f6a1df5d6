package reconcile

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/worldstats/internal/dataset"
)

// CollisionPolicy decides what happens when two sources share a non-key
// column name. Columns are never suffixed.
type CollisionPolicy string

const (
	// PolicyCoalesce treats same-named columns as one column: every source's
	// values take part in duplicate-key resolution, so two sources reporting
	// 10 and 20 for the same country resolve to 15.
	PolicyCoalesce CollisionPolicy = "coalesce"

	// PolicyLastWriterWins keeps the column's values only from the last
	// table, in join order, that has it.
	PolicyLastWriterWins CollisionPolicy = "last_writer_wins"
)

// ParseCollisionPolicy accepts the policy names used in configuration.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case "", PolicyCoalesce:
		return PolicyCoalesce, nil
	case PolicyLastWriterWins:
		return PolicyLastWriterWins, nil
	}
	return "", fmt.Errorf("unknown collision policy %q", s)
}

// Collision records a non-key column present in more than one source.
type Collision struct {
	Column  string `json:"column"`
	Earlier string `json:"earlier"`
	Later   string `json:"later"`
}

// CollisionHook is called once per (column, later source) pair.
type CollisionHook func(Collision)

// MergeStats summarizes a merge.
type MergeStats struct {
	InputRows     int         `json:"input_rows"`
	Keys          int         `json:"keys"`
	DuplicateKeys int         `json:"duplicate_keys"`
	DroppedRows   int         `json:"dropped_rows"`
	Collisions    []Collision `json:"collisions,omitempty"`
}

// Merger joins prepared tables on the canonical key.
type Merger struct {
	// Policy defaults to PolicyCoalesce.
	Policy CollisionPolicy

	// OnCollision, when set, is told about every column name collision.
	OnCollision CollisionHook
}

// group accumulates the non-missing cells contributed to one key, and how
// many rows each table contributed.
type group struct {
	rows   int
	perSrc []int
	cells  map[string][]cell
}

// cell is one non-missing value and the table it came from.
type cell struct {
	v   dataset.Value
	src int
}

// Merge performs a full outer join of tables, left to right, on the
// canonical key and then resolves duplicate keys column by column over the
// joined rows:
//
//   - no non-missing value: missing
//   - one non-missing value: that value, verbatim
//   - two or more: the mean of the values that coerce to numbers, or
//     missing when none do
//
// The join pairs every row of a key with every row of the same key in the
// other tables, so a cell appears once per matching row elsewhere. A value
// from a table with one row for a key, joined to a table with two rows for
// it, counts twice: a lone text value then resolves to missing and a lone
// number to itself.
//
// Same-named non-key columns are combined according to m.Policy.
// The output has exactly one row per distinct key, sorted by key, and the
// ordered union of all input columns with the key first. Rows whose key is
// missing cannot be joined and are dropped (counted in DroppedRows).
func (m *Merger) Merge(tables ...*dataset.Table) (*dataset.Table, MergeStats, error) {
	var stats MergeStats
	if len(tables) == 0 {
		return nil, stats, ErrNoSources
	}
	for _, t := range tables {
		if !t.HasColumn(dataset.KeyColumn) {
			return nil, stats, &SchemaError{Source: t.Name, Column: dataset.KeyColumn}
		}
	}

	columns, owner := m.columnOwners(tables, &stats)

	groups := make(map[string]*group)
	for ti, t := range tables {
		for _, r := range t.Rows {
			stats.InputRows++
			key := r.Get(dataset.KeyColumn)
			if key.IsMissing() {
				stats.DroppedRows++
				continue
			}

			k := key.String()
			g, ok := groups[k]
			if !ok {
				g = &group{perSrc: make([]int, len(tables)), cells: make(map[string][]cell)}
				groups[k] = g
			}
			g.rows++
			g.perSrc[ti]++

			for _, c := range t.Columns {
				if c == dataset.KeyColumn {
					continue
				}
				if m.Policy == PolicyLastWriterWins && owner[c] != ti {
					continue
				}
				if v := r.Get(c); !v.IsMissing() {
					g.cells[c] = append(g.cells[c], cell{v: v, src: ti})
				}
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := dataset.NewTable("merged", columns...)
	out.Rows = make([]dataset.Row, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if g.rows > 1 {
			stats.DuplicateKeys++
		}
		row := make(dataset.Row, len(columns))
		row[dataset.KeyColumn] = dataset.Text(k)
		for _, c := range columns[1:] {
			row[c] = g.resolve(g.cells[c])
		}
		out.Rows = append(out.Rows, row)
	}
	stats.Keys = len(keys)

	return out, stats, nil
}

// columnOwners builds the output column order and, for each non-key column,
// the index of the last table that provides it.
func (m *Merger) columnOwners(tables []*dataset.Table, stats *MergeStats) ([]string, map[string]int) {
	columns := []string{dataset.KeyColumn}
	owner := make(map[string]int)

	for ti, t := range tables {
		for _, c := range t.Columns {
			if c == dataset.KeyColumn {
				continue
			}
			prev, seen := owner[c]
			if !seen {
				columns = append(columns, c)
			} else if prev != ti {
				col := Collision{Column: c, Earlier: tables[prev].Name, Later: t.Name}
				stats.Collisions = append(stats.Collisions, col)
				if m.OnCollision != nil {
					m.OnCollision(col)
				}
			}
			owner[c] = ti
		}
	}
	return columns, owner
}

// weight is how many joined rows carry one row of table src: the product
// of the other tables' row counts for the key, a table without the key
// counting as one null row.
func (g *group) weight(src int) float64 {
	w := 1.0
	for i, n := range g.perSrc {
		if i != src && n > 1 {
			w *= float64(n)
		}
	}
	return w
}

// resolve collapses the non-missing values a key received for one column.
func (g *group) resolve(cells []cell) dataset.Value {
	if len(cells) == 0 {
		return dataset.Missing()
	}
	if len(cells) == 1 && g.weight(cells[0].src) == 1 {
		return cells[0].v
	}

	nums := make([]weighted, 0, len(cells))
	for _, c := range cells {
		if f, ok := c.v.Float(); ok {
			nums = append(nums, weighted{x: f, w: g.weight(c.src)})
		}
	}
	mean, ok := weightedMean(nums)
	if !ok {
		return dataset.Missing()
	}
	return dataset.Number(mean)
}

type weighted struct{ x, w float64 }

// weightedMean sums in ascending (x, w) order so any permutation of xs gives
// the same result.
func weightedMean(xs []weighted) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].x != xs[j].x {
			return xs[i].x < xs[j].x
		}
		return xs[i].w < xs[j].w
	})
	var sum, total float64
	for _, v := range xs {
		sum += v.x * v.w
		total += v.w
	}
	return sum / total, true
}
