// Package browse implements the client-side filter/sort pipeline for the
// marketplace browse page. Apply is a pure function of the listing snapshot
// and the current criteria; the snapshot is never mutated.
package browse

import (
	"sort"
	"strings"

	"github.com/boilerex/bx/internal/market"
)

// Result carries the visible subset plus the listings that were excluded
// because their price or date failed to parse. The caller logs exclusions;
// they never reach the display.
type Result struct {
	Listings []market.Listing
	Excluded []market.Listing
}

// Apply filters and sorts the listing snapshot according to the criteria.
// Filters are applied in a fixed order (status partition, search term,
// category, condition, price interval) and the final sort is stable, so
// ties keep store order.
func Apply(listings []market.Listing, c Criteria) Result {
	var out Result
	term := strings.ToLower(c.SearchTerm)

	for _, l := range listings {
		if !l.Valid() {
			out.Excluded = append(out.Excluded, l)
			continue
		}
		if l.Sold() != c.ShowSold {
			continue
		}
		if term != "" && !matchesTerm(&l, term) {
			continue
		}
		if c.Category != All && l.Category != c.Category {
			continue
		}
		if c.Condition != All && l.Condition != c.Condition {
			continue
		}
		if l.Price < c.PriceMin {
			continue
		}
		if c.PriceMax != OpenMax && l.Price > c.PriceMax {
			continue
		}
		out.Listings = append(out.Listings, l)
	}

	sortListings(out.Listings, c.SortBy)
	return out
}

func matchesTerm(l *market.Listing, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(l.Title), lowerTerm) ||
		strings.Contains(strings.ToLower(l.Description), lowerTerm)
}

func sortListings(ls []market.Listing, mode SortMode) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Price < ls[j].Price })
	case SortPriceDesc:
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Price > ls[j].Price })
	default: // newest
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].CreatedDate.After(ls[j].CreatedDate) })
	}
}
