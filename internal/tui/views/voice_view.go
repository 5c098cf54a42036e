package views

import (
	"fmt"

	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/boilerex/bx/internal/voice"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// VoiceView is the voice search panel: state indicator, live transcript,
// and the result list. When the microphone is unavailable it degrades to
// a typed-query input driving the same search.
type VoiceView struct {
	*tview.Flex
	theme   *ui.Theme
	status  *tview.TextView
	results *tview.Table
	input   *tview.InputField
	data    []market.ListingSummary
	onQuery func(query string)
	typed   bool
}

// NewVoiceView creates the voice search view. typedOnly selects the
// fallback layout with a visible query input.
func NewVoiceView(theme *ui.Theme, typedOnly bool, unavailableReason string) *VoiceView {
	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	status.SetBorder(true)
	status.SetBorderColor(theme.VoiceColor)
	status.SetBackgroundColor(theme.BgColor)
	status.SetTextColor(theme.FgColor)
	status.SetTitle(" Voice Search ")
	status.SetTitleColor(theme.TitleColor)

	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetTitle(" Results ")
	results.SetTitleColor(theme.TitleColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	if typedOnly {
		flex.AddItem(status, 4, 0, false).
			AddItem(input, 1, 0, true).
			AddItem(results, 0, 1, false)
	} else {
		flex.AddItem(status, 6, 0, true).
			AddItem(results, 0, 1, false)
	}

	vv := &VoiceView{
		Flex:    flex,
		theme:   theme,
		status:  status,
		results: results,
		input:   input,
		typed:   typedOnly,
	}
	if typedOnly {
		vv.showUnavailable(unavailableReason)
	} else {
		vv.ShowState(voice.StateIdle, "")
	}
	return vv
}

// Name implements Component.
func (vv *VoiceView) Name() string { return "Voice" }

// Hints implements Component.
func (vv *VoiceView) Hints() []ui.MenuHint {
	if vv.typed {
		return []ui.MenuHint{
			{Key: "Enter", Description: "Search/Open"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []ui.MenuHint{
		{Key: "v", Description: "Speak again"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnQuery sets the callback for the typed fallback input.
func (vv *VoiceView) SetOnQuery(fn func(query string)) {
	vv.onQuery = fn
	vv.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && vv.onQuery != nil {
			vv.onQuery(vv.input.GetText())
		}
	})
}

// ShowState renders the current flow state and transcript.
func (vv *VoiceView) ShowState(state voice.State, transcript string) {
	vv.status.Clear()

	var line string
	switch state {
	case voice.StateIdle:
		line = "Press [gold]v[-] and speak, e.g. \"find me a couch\""
	case voice.StateActivated:
		line = "[deepskyblue]Get ready...[-]"
	case voice.StateListening:
		line = "[deepskyblue::b]Listening...[-:-:-]"
	case voice.StateProcessing:
		line = "[gold]Searching...[-]"
	case voice.StateError:
		line = "[orangered]Something went wrong[-]"
	}
	if transcript != "" {
		line += fmt.Sprintf("\n\n\"%s\"", tview.Escape(transcript))
	}
	_, _ = fmt.Fprintf(vv.status, "\n%s", line)
}

// ShowError renders an error message in the status pane.
func (vv *VoiceView) ShowError(msg string) {
	vv.status.Clear()
	_, _ = fmt.Fprintf(vv.status, "\n[orangered]%s[-]", tview.Escape(msg))
}

func (vv *VoiceView) showUnavailable(reason string) {
	vv.status.Clear()
	_, _ = fmt.Fprintf(vv.status, "\n[orange]Voice input unavailable:[-] %s\n Type your search instead.", tview.Escape(reason))
}

// ShowResults renders the search outcome. An empty result set is a valid
// outcome and says so.
func (vv *VoiceView) ShowResults(query string, results []market.ListingSummary) {
	vv.data = results
	vv.results.Clear()
	vv.results.SetTitle(fmt.Sprintf(" Results for %q ", query))

	if len(results) == 0 {
		vv.results.SetCell(0, 0, tview.NewTableCell("  No matches. Try different words.").
			SetSelectable(false).
			SetTextColor(vv.theme.FgColor))
		return
	}

	headers := []string{" TITLE", " PRICE", " CATEGORY"}
	for col, h := range headers {
		vv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(vv.theme.TableHeaderFg).
			SetBackgroundColor(vv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
	for i, r := range results {
		row := i + 1
		vv.results.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(r.Title))).SetExpansion(2).SetTextColor(vv.theme.FgColor))
		vv.results.SetCell(row, 1, tview.NewTableCell(" "+market.FormatPrice(r.Price)).SetMaxWidth(12).SetTextColor(vv.theme.PriceColor))
		vv.results.SetCell(row, 2, tview.NewTableCell(" "+r.Category).SetExpansion(1).SetTextColor(vv.theme.FgColor))
	}
}

// SelectedID returns the listing ID under the result cursor, or empty.
func (vv *VoiceView) SelectedID() string {
	row, _ := vv.results.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(vv.data) {
		return vv.data[idx].ID
	}
	return ""
}

// Input returns the typed fallback input field.
func (vv *VoiceView) Input() *tview.InputField { return vv.input }

// Results returns the focusable results table.
func (vv *VoiceView) Results() *tview.Table { return vv.results }
