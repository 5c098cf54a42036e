package browse

// SortMode selects the ordering of the visible listing set.
type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// SortModes in display order.
var SortModes = []SortMode{SortNewest, SortPriceAsc, SortPriceDesc}

// Label returns the human-readable name for a sort mode.
func (m SortMode) Label() string {
	switch m {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	default:
		return "Newest First"
	}
}

// All is the wildcard value for the category and condition filters.
const All = "all"

// OpenMax marks the upper price bound as open-ended.
const OpenMax = -1

// Criteria is the transient filter state, rebuilt on every interaction.
type Criteria struct {
	SearchTerm string
	Category   string
	Condition  string
	PriceMin   float64
	// PriceMax is the inclusive upper bound; OpenMax means unbounded.
	PriceMax float64
	SortBy   SortMode
	ShowSold bool
}

// DefaultCriteria returns the reset state of the browse page.
func DefaultCriteria() Criteria {
	return Criteria{
		Category:  All,
		Condition: All,
		PriceMin:  0,
		PriceMax:  OpenMax,
		SortBy:    SortNewest,
	}
}

// Active reports whether any narrowing filter differs from the default.
func (c Criteria) Active() bool {
	d := DefaultCriteria()
	return c.SearchTerm != "" ||
		c.Category != d.Category ||
		c.Condition != d.Condition ||
		c.PriceMin != d.PriceMin ||
		c.PriceMax != d.PriceMax
}
