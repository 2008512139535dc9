// Package descindex precomputes which transactions mention which accounts in
// their description, so the transfer matcher never rescans descriptions.
package descindex

import (
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Descriptor maps a description substring to the account(s) it identifies,
// e.g. "X1234" for the last digits of a checking account.
type Descriptor struct {
	Key     string
	Targets []int64
}

// Index holds per-row and per-account masks over one table.
type Index struct {
	// rowTargets[i] is the union of targets of every key found in row i.
	rowTargets [][]int64
	// mentions[id][i] is true when row i mentions a key targeting id.
	mentions map[int64][]bool
	// reverse[id] is mentions[id] minus rows on accounts owned by a foreign key.
	reverse map[int64][]bool
}

// Build scans the table once per descriptor.
func Build(table *ledger.Table, descriptors []Descriptor) *Index {
	n := table.Len()
	idx := &Index{
		rowTargets: make([][]int64, n),
		mentions:   map[int64][]bool{},
		reverse:    map[int64][]bool{},
	}

	// onTargets[k][i]: row i sits on an account targeted by descriptor k.
	onTargets := make([][]bool, len(descriptors))

	for k, d := range descriptors {
		key := strings.ToUpper(d.Key)
		targets := toSet(d.Targets)
		onTargets[k] = make([]bool, n)

		for i := 0; i < n; i++ {
			row := table.Row(i)
			onTargets[k][i] = targets[row.AccountID]
			if key == "" || !strings.Contains(strings.ToUpper(row.OriginalDescription), key) {
				continue
			}
			idx.rowTargets[i] = appendUnique(idx.rowTargets[i], d.Targets...)
			for _, id := range d.Targets {
				mask, ok := idx.mentions[id]
				if !ok {
					mask = make([]bool, n)
					idx.mentions[id] = mask
				}
				mask[i] = true
			}
		}
	}

	for i := range idx.rowTargets {
		sort.Slice(idx.rowTargets[i], func(a, b int) bool { return idx.rowTargets[i][a] < idx.rowTargets[i][b] })
	}

	// Account ids seen either in the table or in a descriptor.
	ids := map[int64]bool{}
	for i := 0; i < n; i++ {
		ids[table.Row(i).AccountID] = true
	}
	for _, d := range descriptors {
		for _, id := range d.Targets {
			ids[id] = true
		}
	}

	for id := range ids {
		var foreign []int
		for k, d := range descriptors {
			if !toSet(d.Targets)[id] {
				foreign = append(foreign, k)
			}
		}

		mentions, ok := idx.mentions[id]
		if !ok {
			continue
		}
		reverse := make([]bool, n)
		for i := 0; i < n; i++ {
			if !mentions[i] {
				continue
			}
			reverse[i] = true
			for _, k := range foreign {
				if onTargets[k][i] {
					reverse[i] = false
					break
				}
			}
		}
		idx.reverse[id] = reverse
	}

	return idx
}

// Targets returns the account ids named by row i's description, sorted.
func (x *Index) Targets(row int) []int64 {
	return x.rowTargets[row]
}

// Reverse returns the rows that mention account id and do not sit on an
// account owned by one of id's foreign keys. The second result is false when
// no descriptor targets id.
func (x *Index) Reverse(id int64) ([]bool, bool) {
	m, ok := x.reverse[id]
	return m, ok
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func appendUnique(dst []int64, vals ...int64) []int64 {
	for _, v := range vals {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
