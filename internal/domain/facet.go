package domain

// FacetDimension is one configured filterable dimension of the catalog
// (e.g. territories, languages). The set of dimensions is open: it comes
// from configuration, not from code.
type FacetDimension struct {
	Name  string // stable key used in queries and storage
	Label string // display name
}

// FacetCount is a raw per-code match count produced by the catalog store
// for a single dimension under an (already relaxed) query.
type FacetCount struct {
	Code  string
	Count int
}

// FacetOption is one selectable value within a dimension. Count is
// forward-looking: the number of datasets matching the current query with
// this dimension's own constraint removed but all others applied.
type FacetOption struct {
	Dimension string
	Code      string
	Label     string
	Count     int
	Active    bool
}

// FacetGroup is the computed option list for one dimension. Degraded is
// set when the dimension's computation failed and the options are empty
// as a fallback rather than genuinely absent.
type FacetGroup struct {
	Dimension string
	Label     string
	Options   []FacetOption
	Degraded  bool
}
