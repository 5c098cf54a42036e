package browse

import (
	"reflect"
	"testing"
	"time"

	"github.com/boilerex/bx/internal/market"
)

func mkListing(id string, price float64, created string, opts ...func(*market.Listing)) market.Listing {
	t, _ := time.Parse(time.RFC3339, created)
	l := market.Listing{
		ID:          id,
		Title:       "item " + id,
		Description: "description " + id,
		Price:       price,
		Category:    "Other",
		Condition:   "Good",
		Status:      market.StatusActive,
		CreatedDate: t,
	}
	for _, o := range opts {
		o(&l)
	}
	return l
}

func ids(ls []market.Listing) []string {
	var out []string
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestStatusPartition(t *testing.T) {
	listings := []market.Listing{
		mkListing("a", 10, "2026-01-01T00:00:00Z"),
		mkListing("s", 10, "2026-01-02T00:00:00Z", func(l *market.Listing) { l.Status = market.StatusSold }),
	}

	active := Apply(listings, DefaultCriteria())
	if got := ids(active.Listings); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("active partition = %v, want [a]", got)
	}

	c := DefaultCriteria()
	c.ShowSold = true
	sold := Apply(listings, c)
	if got := ids(sold.Listings); !reflect.DeepEqual(got, []string{"s"}) {
		t.Errorf("sold partition = %v, want [s]", got)
	}
}

func TestSearchTermCaseInsensitive(t *testing.T) {
	listings := []market.Listing{
		mkListing("a", 10, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Title = "Comfy Couch" }),
		mkListing("b", 10, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Description = "includes a COUCH cover" }),
		mkListing("c", 10, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Title = "Desk lamp" }),
	}
	c := DefaultCriteria()
	c.SearchTerm = "couch"
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("search result = %v, want [a b]", got)
	}
}

func TestCategoryAndPriceConjunction(t *testing.T) {
	// One Textbooks item at $40 and one Electronics item at $30; the
	// Textbooks + [0,50] criteria must keep only the former.
	listings := []market.Listing{
		mkListing("tb", 40, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Category = "Textbooks" }),
		mkListing("el", 30, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Category = "Electronics" }),
	}
	c := DefaultCriteria()
	c.Category = "Textbooks"
	c.PriceMin = 0
	c.PriceMax = 50
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"tb"}) {
		t.Errorf("result = %v, want [tb]", got)
	}
}

func TestConditionFilter(t *testing.T) {
	listings := []market.Listing{
		mkListing("a", 10, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Condition = "New" }),
		mkListing("b", 10, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Condition = "Used" }),
	}
	c := DefaultCriteria()
	c.Condition = "New"
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("result = %v, want [a]", got)
	}
}

func TestPriceBoundsInclusive(t *testing.T) {
	listings := []market.Listing{
		mkListing("min", 10, "2026-01-01T00:00:00Z"),
		mkListing("mid", 30, "2026-01-01T00:00:00Z"),
		mkListing("max", 50, "2026-01-01T00:00:00Z"),
		mkListing("over", 50.01, "2026-01-01T00:00:00Z"),
		mkListing("under", 9.99, "2026-01-01T00:00:00Z"),
	}
	c := DefaultCriteria()
	c.PriceMin = 10
	c.PriceMax = 50
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"min", "mid", "max"}) {
		t.Errorf("result = %v, want [min mid max]", got)
	}
}

func TestOpenEndedMax(t *testing.T) {
	listings := []market.Listing{
		mkListing("cheap", 5, "2026-01-01T00:00:00Z"),
		mkListing("pricey", 99999, "2026-01-01T00:00:00Z"),
	}
	got := ids(Apply(listings, DefaultCriteria()).Listings)
	if len(got) != 2 {
		t.Errorf("open-ended max excluded listings: %v", got)
	}
}

func TestSortPriceAscStableOnTies(t *testing.T) {
	// Spec example: [{10,d1},{5,d2},{5,d3}] sorted price_asc yields
	// [{5,d2},{5,d3},{10,d1}] with input order kept on the tie.
	listings := []market.Listing{
		mkListing("d1", 10, "2026-01-01T00:00:00Z"),
		mkListing("d2", 5, "2026-01-02T00:00:00Z"),
		mkListing("d3", 5, "2026-01-03T00:00:00Z"),
	}
	c := DefaultCriteria()
	c.SortBy = SortPriceAsc
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"d2", "d3", "d1"}) {
		t.Errorf("price_asc = %v, want [d2 d3 d1]", got)
	}
}

func TestSortPriceDescStableOnTies(t *testing.T) {
	listings := []market.Listing{
		mkListing("a", 5, "2026-01-01T00:00:00Z"),
		mkListing("b", 9, "2026-01-02T00:00:00Z"),
		mkListing("c", 9, "2026-01-03T00:00:00Z"),
	}
	c := DefaultCriteria()
	c.SortBy = SortPriceDesc
	got := ids(Apply(listings, c).Listings)
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("price_desc = %v, want [b c a]", got)
	}
}

func TestSortNewestStableOnTies(t *testing.T) {
	listings := []market.Listing{
		mkListing("old", 1, "2026-01-01T00:00:00Z"),
		mkListing("t1", 1, "2026-02-01T00:00:00Z"),
		mkListing("t2", 1, "2026-02-01T00:00:00Z"),
	}
	got := ids(Apply(listings, DefaultCriteria()).Listings)
	if !reflect.DeepEqual(got, []string{"t1", "t2", "old"}) {
		t.Errorf("newest = %v, want [t1 t2 old]", got)
	}
}

func TestMalformedListingsExcluded(t *testing.T) {
	bad := mkListing("bad", -1, "2026-01-01T00:00:00Z") // invalid price sentinel
	noDate := market.Listing{ID: "nodate", Price: 5, Status: market.StatusActive}
	listings := []market.Listing{
		mkListing("ok", 10, "2026-01-01T00:00:00Z"),
		bad,
		noDate,
	}
	res := Apply(listings, DefaultCriteria())
	if got := ids(res.Listings); !reflect.DeepEqual(got, []string{"ok"}) {
		t.Errorf("visible = %v, want [ok]", got)
	}
	if got := ids(res.Excluded); !reflect.DeepEqual(got, []string{"bad", "nodate"}) {
		t.Errorf("excluded = %v, want [bad nodate]", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	listings := []market.Listing{
		mkListing("a", 40, "2026-01-03T00:00:00Z", func(l *market.Listing) { l.Category = "Textbooks" }),
		mkListing("b", 30, "2026-01-02T00:00:00Z"),
		mkListing("c", 20, "2026-01-01T00:00:00Z", func(l *market.Listing) { l.Category = "Textbooks" }),
	}
	c := DefaultCriteria()
	c.Category = "Textbooks"
	c.SortBy = SortPriceAsc

	once := Apply(listings, c)
	twice := Apply(once.Listings, c)
	if !reflect.DeepEqual(ids(once.Listings), ids(twice.Listings)) {
		t.Errorf("filter not idempotent: %v then %v", ids(once.Listings), ids(twice.Listings))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	listings := []market.Listing{
		mkListing("b", 20, "2026-01-01T00:00:00Z"),
		mkListing("a", 10, "2026-01-02T00:00:00Z"),
	}
	before := ids(listings)

	c := DefaultCriteria()
	c.SortBy = SortPriceAsc
	_ = Apply(listings, c)

	if got := ids(listings); !reflect.DeepEqual(got, before) {
		t.Errorf("input mutated: %v, want %v", got, before)
	}
}

func TestCriteriaActive(t *testing.T) {
	c := DefaultCriteria()
	if c.Active() {
		t.Error("default criteria should not be active")
	}
	c.Category = "Furniture"
	if !c.Active() {
		t.Error("criteria with category filter should be active")
	}
}
