package transfer

import (
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/descindex"
	"github.com/shunichi-ikebuchi/ledger-reconcile/pkg/ledger"
)

// Refinement narrows the base candidate set using description hints.
type Refinement interface {
	Name() string
	// Allow returns a predicate over candidate rows, or false when the
	// refinement does not apply to this row.
	Allow(table *ledger.Table, index *descindex.Index, row int) (func(candidate int) bool, bool)
}

// ForwardDescriptor keeps candidates on the accounts named in the row's own
// description.
type ForwardDescriptor struct{}

func (ForwardDescriptor) Name() string { return "forward_descriptor" }

func (ForwardDescriptor) Allow(table *ledger.Table, index *descindex.Index, row int) (func(int) bool, bool) {
	targets := index.Targets(row)
	if len(targets) == 0 {
		return nil, false
	}
	set := make(map[int64]bool, len(targets))
	for _, id := range targets {
		set[id] = true
	}
	return func(c int) bool { return set[table.Row(c).AccountID] }, true
}

// ReverseMention keeps candidates whose description names the row's account.
type ReverseMention struct{}

func (ReverseMention) Name() string { return "reverse_mention" }

func (ReverseMention) Allow(table *ledger.Table, index *descindex.Index, row int) (func(int) bool, bool) {
	mask, ok := index.Reverse(table.Row(row).AccountID)
	if !ok {
		return nil, false
	}
	return func(c int) bool { return mask[c] }, true
}

// DefaultRefinements is the priority order used by NewMatcher.
func DefaultRefinements() []Refinement {
	return []Refinement{ForwardDescriptor{}, ReverseMention{}}
}

// refine tries each refinement in order and returns the first non-empty
// narrowing of candidates, or candidates unchanged with an empty name.
func refine(refinements []Refinement, table *ledger.Table, index *descindex.Index, row int, candidates []int) ([]int, string) {
	for _, r := range refinements {
		allow, ok := r.Allow(table, index, row)
		if !ok {
			continue
		}
		var narrowed []int
		for _, c := range candidates {
			if allow(c) {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			return narrowed, r.Name()
		}
	}
	return candidates, ""
}
