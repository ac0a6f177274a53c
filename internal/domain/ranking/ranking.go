package ranking

import (
	"math"
	"sort"

	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
)

const tieEpsilon = 1e-9

// Rankable is a row that exposes stat values by key.
type Rankable interface {
	RowID() int
	Stat(key playerstats.StatKey) (float64, bool)
}

// Spec is one stat to rank and its preferred direction.
type Spec struct {
	Key          playerstats.StatKey
	HigherBetter bool
}

// SpecsFor resolves direction from the stat catalog. Unknown keys are ranked
// higher-is-better.
func SpecsFor(keys ...playerstats.StatKey) []Spec {
	out := make([]Spec, 0, len(keys))
	for _, key := range keys {
		def, ok := playerstats.Lookup(key)
		out = append(out, Spec{Key: key, HigherBetter: !ok || def.HigherBetter})
	}
	return out
}

// AllSpecs covers the whole catalog.
func AllSpecs() []Spec {
	return SpecsFor(playerstats.Keys(playerstats.Catalog())...)
}

// Entry is one row's position for one stat.
type Entry struct {
	RowID int     `json:"rowId"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
	Tied  bool    `json:"tied"`
}

// Ranking is the sorted order of a row set for one stat.
type Ranking struct {
	Spec   Spec
	Sorted []Entry
	byID   map[int]int
}

// Rank returns the entry of rowID.
func (r Ranking) Rank(rowID int) (Entry, bool) {
	idx, ok := r.byID[rowID]
	if !ok {
		return Entry{}, false
	}
	return r.Sorted[idx], true
}

// TopN returns the row ids of the first n sorted rows.
func (r Ranking) TopN(n int) []int {
	if n > len(r.Sorted) {
		n = len(r.Sorted)
	}
	if n < 0 {
		n = 0
	}
	out := make([]int, 0, n)
	for _, e := range r.Sorted[:n] {
		out = append(out, e.RowID)
	}
	return out
}

// Leader returns the single optimal row. A tie for first means no leader.
func (r Ranking) Leader() (int, bool) {
	if len(r.Sorted) == 0 || r.Sorted[0].Tied {
		return 0, false
	}
	return r.Sorted[0].RowID, true
}

// Table holds one ranking per stat.
type Table map[playerstats.StatKey]Ranking

// Rank ranks rows for every spec. Rows lacking a stat are left out of that
// stat's ranking. Equal values share the rank of the first of them (1,2,2,4)
// and are flagged tied. Equal values are ordered by row id.
func Rank[T Rankable](rows []T, specs []Spec) Table {
	out := make(Table, len(specs))
	for _, spec := range specs {
		out[spec.Key] = rankOne(rows, spec)
	}
	return out
}

func rankOne[T Rankable](rows []T, spec Spec) Ranking {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Stat(spec.Key)
		if !ok || math.IsNaN(v) {
			continue
		}
		entries = append(entries, Entry{RowID: row.RowID(), Value: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !equal(a.Value, b.Value) {
			if spec.HigherBetter {
				return a.Value > b.Value
			}
			return a.Value < b.Value
		}
		return a.RowID < b.RowID
	})

	byID := make(map[int]int, len(entries))
	for i := range entries {
		if i > 0 && equal(entries[i].Value, entries[i-1].Value) {
			entries[i].Rank = entries[i-1].Rank
			entries[i].Tied = true
			entries[i-1].Tied = true
		} else {
			entries[i].Rank = i + 1
		}
		byID[entries[i].RowID] = i
	}

	return Ranking{Spec: spec, Sorted: entries, byID: byID}
}

func equal(a, b float64) bool {
	return math.Abs(a-b) < tieEpsilon
}

// TopNSets returns, per stat, the ids of the first n rows.
func (t Table) TopNSets(n int) map[playerstats.StatKey][]int {
	out := make(map[playerstats.StatKey][]int, len(t))
	for key, r := range t {
		out[key] = r.TopN(n)
	}
	return out
}

// RanksOf returns every stat entry of one row.
func (t Table) RanksOf(rowID int) map[playerstats.StatKey]Entry {
	out := make(map[playerstats.StatKey]Entry, len(t))
	for key, r := range t {
		if e, ok := r.Rank(rowID); ok {
			out[key] = e
		}
	}
	return out
}

// Leaders returns the leader row per stat, omitting stats with a tie for first.
func (t Table) Leaders() map[playerstats.StatKey]int {
	out := make(map[playerstats.StatKey]int, len(t))
	for key, r := range t {
		if id, ok := r.Leader(); ok {
			out[key] = id
		}
	}
	return out
}

// Populations keeps two rankings of the same stats: over every row, which
// drives top-N highlights so filters never promote a row, and over the
// filtered rows, which drives leader highlights inside a comparison.
type Populations struct {
	Global   Table
	Filtered Table
}

func RankPopulations[T Rankable](all []T, keep func(T) bool, specs []Spec) Populations {
	filtered := all
	if keep != nil {
		filtered = make([]T, 0, len(all))
		for _, row := range all {
			if keep(row) {
				filtered = append(filtered, row)
			}
		}
	}
	return Populations{
		Global:   Rank(all, specs),
		Filtered: Rank(filtered, specs),
	}
}
