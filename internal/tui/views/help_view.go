package views

import (
	"fmt"

	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := fmt.Sprintf("#%06x", hv.theme.MenuKeyColor.Hex())

	help := fmt.Sprintf(`
  [::b]Global Keys[-:-:-]

  [%s]:[-:-:-]    Command mode        [%s]Esc[-:-:-]   Cancel / Go back
  [%s]v[-:-:-]    Voice search        [%s]?[-:-:-]     Help
  [%s]q[-:-:-]    Quit / Back         [%s]Ctrl-C[-:-:-] Quit immediately

  [::b]Browse[-:-:-]

  [%s]Enter[-:-:-]  Open listing       [%s]/[-:-:-]     Search titles
  [%s]c[-:-:-]      Cycle category     [%s]o[-:-:-]     Cycle condition
  [%s]s[-:-:-]      Cycle sort         [%s]p[-:-:-]     Price range
  [%s]x[-:-:-]      Toggle sold        [%s]0[-:-:-]     Clear all filters
  [%s]r[-:-:-]      Refresh            [%s]j/k[-:-:-]   Move down/up

  [::b]Listing[-:-:-]

  [%s]f[-:-:-]    Favorite / unfavorite  [%s]Q[-:-:-]   Share QR code

  [::b]Commands (: mode)[-:-:-]

  [%s]:browse[-:-:-]            Browse listings
  [%s]:dash[-:-:-]              Dashboard
  [%s]:map[-:-:-]               Safe meetup locations
  [%s]:open <id>[-:-:-]         Open a listing by ID
  [%s]:voice <query>[-:-:-]     Search without the microphone
  [%s]:refresh[-:-:-]           Reload listings
  [%s]:help[-:-:-] / [%s]:h[-:-:-]       Show this help
  [%s]:quit[-:-:-] / [%s]:q[-:-:-]       Quit application
`,
		kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc, kc, kc, kc, kc, kc, kc,
		kc, kc,
		kc, kc, kc, kc, kc, kc, kc, kc, kc, kc,
	)

	_, _ = fmt.Fprint(hv, help)
}
