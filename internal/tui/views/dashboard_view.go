package views

import (
	"fmt"

	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/store"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// DashboardView shows the newest listings alongside the user's favorites
// and recent searches.
type DashboardView struct {
	*tview.Flex
	theme    *ui.Theme
	recent   *tview.Table
	side     *tview.TextView
	listings []market.Listing
}

// NewDashboardView creates the dashboard.
func NewDashboardView(theme *ui.Theme) *DashboardView {
	recent := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	recent.SetBorder(true)
	recent.SetBorderColor(theme.BorderColor)
	recent.SetBackgroundColor(theme.BgColor)
	recent.SetTitle(" Just Posted ")
	recent.SetTitleColor(theme.TitleColor)
	recent.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	side := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	side.SetBorder(true)
	side.SetBorderColor(theme.BorderColor)
	side.SetBackgroundColor(theme.BgColor)
	side.SetTextColor(theme.FgColor)
	side.SetTitle(" Your Activity ")
	side.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		AddItem(recent, 0, 2, true).
		AddItem(side, 0, 1, false)

	return &DashboardView{
		Flex:   flex,
		theme:  theme,
		recent: recent,
		side:   side,
	}
}

// Name implements Component.
func (dv *DashboardView) Name() string { return "Dashboard" }

// Hints implements Component.
func (dv *DashboardView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "b", Description: "Browse"},
		{Key: "m", Description: "Meetup map"},
		{Key: "v", Description: "Voice"},
	}
}

// Update refreshes both panes.
func (dv *DashboardView) Update(recent []market.Listing, favorites []store.Favorite, searches []store.RecentSearch) {
	dv.listings = recent
	dv.recent.Clear()

	headers := []string{" TITLE", " PRICE", " POSTED"}
	for col, h := range headers {
		dv.recent.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(dv.theme.TableHeaderFg).
			SetBackgroundColor(dv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
	for i, l := range recent {
		row := i + 1
		dv.recent.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(l.Title))).SetExpansion(2).SetTextColor(dv.theme.FgColor))
		dv.recent.SetCell(row, 1, tview.NewTableCell(" "+market.FormatPrice(l.Price)).SetMaxWidth(12).SetTextColor(dv.theme.PriceColor))
		dv.recent.SetCell(row, 2, tview.NewTableCell(" "+formatPosted(l.CreatedDate)).SetMaxWidth(12).SetTextColor(dv.theme.FgColor))
	}

	dv.side.Clear()
	if len(favorites) > 0 {
		_, _ = fmt.Fprint(dv.side, "\n [::b]Favorites[-:-:-]\n")
		for _, f := range favorites {
			_, _ = fmt.Fprintf(dv.side, "  [gold]*[-] %s  [mediumspringgreen]%s[-]\n",
				tview.Escape(sanitizeForTerminal(f.Title)), market.FormatPrice(f.Price))
		}
	}
	if len(searches) > 0 {
		_, _ = fmt.Fprint(dv.side, "\n [::b]Recent Searches[-:-:-]\n")
		for _, s := range searches {
			icon := "/"
			if s.Source == store.SearchSourceVoice {
				icon = "~"
			}
			_, _ = fmt.Fprintf(dv.side, "  %s %s\n", icon, tview.Escape(s.Query))
		}
	}
	if len(favorites) == 0 && len(searches) == 0 {
		_, _ = fmt.Fprint(dv.side, "\n Nothing here yet.\n\n Star listings with [gold]f[-],\n search with [gold]/[-] or [gold]v[-].\n")
	}
}

// Selected returns the listing under the cursor, or nil.
func (dv *DashboardView) Selected() *market.Listing {
	row, _ := dv.recent.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(dv.listings) {
		return &dv.listings[idx]
	}
	return nil
}

// Table returns the focusable recent-listings table.
func (dv *DashboardView) Table() *tview.Table { return dv.recent }
