package domain

import (
	"slices"
	"strings"
)

// FilterSelection maps a facet dimension name to the set of selected
// value-codes. Set semantics: a code is either active or not, duplicates
// and insertion order carry no meaning.
type FilterSelection map[string][]string

// QueryState is an immutable search query: an optional free-text term plus
// a filter selection. Derivations (AddFilter, RemoveFilter,
// WithoutDimension) return a new value and never mutate the receiver, so
// the rendering layer can build many alternate link states from one base
// state concurrently.
type QueryState struct {
	term      string
	selection map[string][]string // dimension -> sorted unique codes
}

// NewQueryState builds a QueryState from a free-text term and a selection.
// Codes are deduplicated per dimension; empty codes and dimensions with no
// codes are dropped. The input selection is copied, never retained.
func NewQueryState(term string, sel FilterSelection) QueryState {
	qs := QueryState{term: strings.TrimSpace(term)}
	if len(sel) == 0 {
		return qs
	}
	m := make(map[string][]string, len(sel))
	for dim, codes := range sel {
		if dim == "" {
			continue
		}
		cs := dedupCodes(codes)
		if len(cs) > 0 {
			m[dim] = cs
		}
	}
	if len(m) > 0 {
		qs.selection = m
	}
	return qs
}

// Term returns the free-text term ("" when absent).
func (q QueryState) Term() string { return q.term }

// HasTerm reports whether a free-text term is set.
func (q QueryState) HasTerm() bool { return q.term != "" }

// IsEmpty reports whether the state carries no term and no filters.
func (q QueryState) IsEmpty() bool { return q.term == "" && len(q.selection) == 0 }

// IsActive reports whether code is selected for dimension.
func (q QueryState) IsActive(dimension, code string) bool {
	codes, ok := q.selection[dimension]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(codes, code)
	return found
}

// Codes returns a copy of the selected codes for dimension, sorted.
// Returns nil when the dimension has no active filters.
func (q QueryState) Codes(dimension string) []string {
	codes, ok := q.selection[dimension]
	if !ok {
		return nil
	}
	return slices.Clone(codes)
}

// Dimensions returns the dimension names with at least one active filter,
// sorted for deterministic iteration.
func (q QueryState) Dimensions() []string {
	if len(q.selection) == 0 {
		return nil
	}
	dims := make([]string, 0, len(q.selection))
	for dim := range q.selection {
		dims = append(dims, dim)
	}
	slices.Sort(dims)
	return dims
}

// Selection returns a deep copy of the full filter selection.
func (q QueryState) Selection() FilterSelection {
	if len(q.selection) == 0 {
		return nil
	}
	sel := make(FilterSelection, len(q.selection))
	for dim, codes := range q.selection {
		sel[dim] = slices.Clone(codes)
	}
	return sel
}

// AddFilter returns a new QueryState with code selected for dimension.
// Adding an already-active code (or an empty dimension/code) returns an
// equivalent state.
func (q QueryState) AddFilter(dimension, code string) QueryState {
	if dimension == "" || code == "" || q.IsActive(dimension, code) {
		return q
	}
	m := q.cloneSelection(len(q.selection) + 1)
	codes := append(slices.Clone(m[dimension]), code)
	slices.Sort(codes)
	m[dimension] = codes
	return QueryState{term: q.term, selection: m}
}

// RemoveFilter returns a new QueryState with code deselected for dimension.
// Removing an absent code returns an equivalent state.
func (q QueryState) RemoveFilter(dimension, code string) QueryState {
	if !q.IsActive(dimension, code) {
		return q
	}
	m := q.cloneSelection(len(q.selection))
	codes := slices.Clone(m[dimension])
	i, _ := slices.BinarySearch(codes, code)
	codes = slices.Delete(codes, i, i+1)
	if len(codes) == 0 {
		delete(m, dimension)
	} else {
		m[dimension] = codes
	}
	if len(m) == 0 {
		m = nil
	}
	return QueryState{term: q.term, selection: m}
}

// WithoutDimension returns a new QueryState with all of the dimension's
// selections cleared but every other constraint (including the text term)
// intact. This is the relaxation used for forward-looking facet counts.
func (q QueryState) WithoutDimension(dimension string) QueryState {
	if _, ok := q.selection[dimension]; !ok {
		return q
	}
	m := q.cloneSelection(len(q.selection) - 1)
	delete(m, dimension)
	if len(m) == 0 {
		m = nil
	}
	return QueryState{term: q.term, selection: m}
}

// cloneSelection shallow-copies the selection map. Code slices are shared
// with the original and must be cloned before modification.
func (q QueryState) cloneSelection(capacity int) map[string][]string {
	m := make(map[string][]string, capacity)
	for dim, codes := range q.selection {
		m[dim] = codes
	}
	return m
}

// dedupCodes returns the sorted unique non-empty codes.
func dedupCodes(codes []string) []string {
	cs := make([]string, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			cs = append(cs, c)
		}
	}
	slices.Sort(cs)
	return slices.Compact(cs)
}
