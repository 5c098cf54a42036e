package views

import (
	"fmt"
	"strings"

	"github.com/boilerex/bx/internal/campus"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// CampusView lists safe meetup locations with a detail pane.
type CampusView struct {
	*tview.Flex
	theme  *ui.Theme
	table  *tview.Table
	detail *tview.TextView
}

// NewCampusView creates the meetup map view.
func NewCampusView(theme *ui.Theme) *CampusView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" Safe Meetup Locations ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	detail := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	detail.SetBorder(true)
	detail.SetBorderColor(theme.BorderColor)
	detail.SetBackgroundColor(theme.BgColor)
	detail.SetTextColor(theme.FgColor)
	detail.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		AddItem(table, 0, 1, true).
		AddItem(detail, 0, 1, false)

	cv := &CampusView{
		Flex:   flex,
		theme:  theme,
		table:  table,
		detail: detail,
	}

	table.SetSelectionChangedFunc(func(row, col int) {
		cv.showDetail(cv.Selected())
	})

	cv.populate()
	return cv
}

// Name implements Component.
func (cv *CampusView) Name() string { return "Campus" }

// Hints implements Component.
func (cv *CampusView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "d", Description: "Directions link"},
		{Key: "Esc", Description: "Back"},
	}
}

func (cv *CampusView) populate() {
	headers := []string{" LOCATION", " SAFETY", " CROWD", " HOURS"}
	for col, h := range headers {
		cv.table.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cv.theme.TableHeaderFg).
			SetBackgroundColor(cv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
	for i, loc := range campus.Locations {
		row := i + 1
		stars := strings.Repeat("*", loc.SafetyRating)
		cv.table.SetCell(row, 0, tview.NewTableCell(" "+loc.Name).SetExpansion(2).SetTextColor(cv.theme.FgColor))
		cv.table.SetCell(row, 1, tview.NewTableCell(" [gold]"+stars+"[-]").SetMaxWidth(8))
		cv.table.SetCell(row, 2, tview.NewTableCell(" "+string(loc.CrowdLevel)).SetMaxWidth(14).SetTextColor(cv.theme.FgColor))
		cv.table.SetCell(row, 3, tview.NewTableCell(" "+loc.Hours).SetExpansion(1).SetTextColor(cv.theme.FgColor))
	}
	if len(campus.Locations) > 0 {
		cv.table.Select(1, 0)
		cv.showDetail(&campus.Locations[0])
	}
}

func (cv *CampusView) showDetail(loc *campus.Location) {
	cv.detail.Clear()
	if loc == nil {
		return
	}
	cv.detail.SetTitle(fmt.Sprintf(" %s ", loc.Name))

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s\n\n", loc.Description)
	fmt.Fprintf(&b, " Safety:  [gold]%s[-] (%s)\n", strings.Repeat("*", loc.SafetyRating), campus.SafetyBadge(loc.SafetyRating))
	fmt.Fprintf(&b, " Crowd:   %s\n", loc.CrowdLevel)
	fmt.Fprintf(&b, " Hours:   %s\n\n", loc.Hours)
	b.WriteString(" Features:\n")
	for _, f := range loc.Features {
		fmt.Fprintf(&b, "   - %s\n", f)
	}
	b.WriteString("\n [::b]Safety Tips[-:-:-]\n")
	for _, tip := range campus.SafetyTips {
		fmt.Fprintf(&b, "   - %s\n", tip)
	}

	_, _ = fmt.Fprint(cv.detail, b.String())
}

// Selected returns the location under the cursor, or nil.
func (cv *CampusView) Selected() *campus.Location {
	row, _ := cv.table.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(campus.Locations) {
		return &campus.Locations[idx]
	}
	return nil
}

// Table returns the focusable location table.
func (cv *CampusView) Table() *tview.Table { return cv.table }
