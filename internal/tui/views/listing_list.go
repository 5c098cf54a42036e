package views

import (
	"fmt"
	"time"

	"github.com/boilerex/bx/internal/browse"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ListingList is the main browse table.
type ListingList struct {
	*tview.Table
	theme    *ui.Theme
	listings []market.Listing
}

// NewListingList creates the browse table.
func NewListingList(theme *ui.Theme) *ListingList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Listings ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ListingList{Table: table, theme: theme}
}

// Name implements Component.
func (ll *ListingList) Name() string { return "Browse" }

// Hints implements Component.
func (ll *ListingList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Search"},
		{Key: "c", Description: "Category"},
		{Key: "o", Description: "Condition"},
		{Key: "s", Description: "Sort"},
		{Key: "p", Description: "Price"},
		{Key: "x", Description: "Sold"},
		{Key: "0", Description: "Clear filters"},
		{Key: "v", Description: "Voice"},
	}
}

// Update refreshes the table with filtered listings. The title reflects
// the active criteria so users can see why rows are missing.
func (ll *ListingList) Update(listings []market.Listing, c browse.Criteria) {
	ll.listings = listings
	ll.Clear()

	title := " Listings "
	if c.Active() {
		title = fmt.Sprintf(" Listings (%s) ", describeCriteria(c))
	}
	ll.SetTitle(title)

	headers := []string{" TITLE", " PRICE", " CATEGORY", " CONDITION", " POSTED"}
	for col, h := range headers {
		ll.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(ll.theme.TableHeaderFg).
			SetBackgroundColor(ll.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	for i, l := range listings {
		row := i + 1
		title := sanitizeForTerminal(l.Title)
		fg := ll.theme.FgColor
		if l.Sold() {
			title += " [sold]"
			fg = ll.theme.SoldColor
		}
		ll.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(title)).SetMaxWidth(40).SetExpansion(2).SetTextColor(fg))
		ll.SetCell(row, 1, tview.NewTableCell(" "+market.FormatPrice(l.Price)).SetMaxWidth(12).SetTextColor(ll.theme.PriceColor))
		ll.SetCell(row, 2, tview.NewTableCell(" "+l.Category).SetMaxWidth(22).SetExpansion(1).SetTextColor(fg))
		ll.SetCell(row, 3, tview.NewTableCell(" "+l.Condition).SetMaxWidth(12).SetTextColor(fg))
		ll.SetCell(row, 4, tview.NewTableCell(" "+formatPosted(l.CreatedDate)).SetMaxWidth(12).SetTextColor(fg))
	}
}

// Selected returns the listing under the cursor, or nil.
func (ll *ListingList) Selected() *market.Listing {
	row, _ := ll.GetSelection()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(ll.listings) {
		return &ll.listings[idx]
	}
	return nil
}

func describeCriteria(c browse.Criteria) string {
	var parts []string
	if c.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("%q", c.SearchTerm))
	}
	if c.Category != browse.All {
		parts = append(parts, c.Category)
	}
	if c.Condition != browse.All {
		parts = append(parts, c.Condition)
	}
	if c.PriceMin > 0 || c.PriceMax != browse.OpenMax {
		if c.PriceMax == browse.OpenMax {
			parts = append(parts, fmt.Sprintf("$%.0f+", c.PriceMin))
		} else {
			parts = append(parts, fmt.Sprintf("$%.0f-%.0f", c.PriceMin, c.PriceMax))
		}
	}
	if c.ShowSold {
		parts = append(parts, "sold")
	}
	if c.SortBy != browse.SortNewest {
		parts = append(parts, c.SortBy.Label())
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func formatPosted(t time.Time) string {
	now := time.Now()
	age := now.Sub(t)
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return t.Format("01/02/06")
	}
}
