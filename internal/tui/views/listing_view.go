package views

import (
	"fmt"
	"strings"

	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/rivo/tview"
)

// ListingView shows a single listing's full details.
type ListingView struct {
	*tview.TextView
	theme    *ui.Theme
	listing  *market.Listing
	favorite bool
	shareQR  bool
	shareURL func(id string) string
}

// NewListingView creates the detail view. shareURL builds the public link
// for a listing ID, rendered as a QR code on demand.
func NewListingView(theme *ui.Theme, shareURL func(id string) string) *ListingView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Listing ")
	tv.SetTitleColor(theme.TitleColor)

	return &ListingView{
		TextView: tv,
		theme:    theme,
		shareURL: shareURL,
	}
}

// Name implements Component.
func (lv *ListingView) Name() string { return "Listing" }

// Hints implements Component.
func (lv *ListingView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "f", Description: "Favorite"},
		{Key: "Q", Description: "Share QR"},
		{Key: "Esc", Description: "Back"},
	}
}

// Show renders a listing.
func (lv *ListingView) Show(l *market.Listing, favorite bool) {
	lv.listing = l
	lv.favorite = favorite
	lv.shareQR = false
	lv.render()
}

// SetFavorite updates the star indicator.
func (lv *ListingView) SetFavorite(fav bool) {
	lv.favorite = fav
	lv.render()
}

// ToggleQR shows or hides the share QR code.
func (lv *ListingView) ToggleQR() {
	lv.shareQR = !lv.shareQR
	lv.render()
}

// Listing returns the listing currently shown, or nil.
func (lv *ListingView) Listing() *market.Listing {
	return lv.listing
}

func (lv *ListingView) render() {
	lv.Clear()
	l := lv.listing
	if l == nil {
		return
	}

	star := " "
	if lv.favorite {
		star = "[gold]*[-]"
	}
	status := ""
	if l.Sold() {
		status = " [gray][SOLD][-]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s [::b]%s[-:-:-]%s\n\n", star, tview.Escape(sanitizeForTerminal(l.Title)), status)
	fmt.Fprintf(&b, " [mediumspringgreen]%s[-]\n\n", market.FormatPrice(l.Price))
	fmt.Fprintf(&b, " Category:  %s\n", l.Category)
	if l.Condition != "" {
		fmt.Fprintf(&b, " Condition: %s\n", l.Condition)
	}
	if !l.CreatedDate.IsZero() {
		fmt.Fprintf(&b, " Posted:    %s\n", l.CreatedDate.Format("Jan 2, 2006"))
	}
	fmt.Fprintf(&b, " Views:     %d\n", l.Views)
	if l.SellerEmail != "" {
		fmt.Fprintf(&b, " Seller:    %s\n", tview.Escape(l.SellerEmail))
	}
	if l.Description != "" {
		fmt.Fprintf(&b, "\n %s\n", tview.Escape(sanitizeForTerminal(l.Description)))
	}

	if lv.shareQR && lv.shareURL != nil {
		fmt.Fprintf(&b, "\n Scan to open on your phone:\n\n%s\n", renderQR(lv.shareURL(l.ID)))
	}

	_, _ = fmt.Fprint(lv, b.String())
}
