package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays the profile, catalog state, and voice indicator.
type StatusBar struct {
	*tview.TextView
	profile string
	catalog string
	voice   string
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetCatalog updates the catalog state display.
func (sb *StatusBar) SetCatalog(status string) {
	sb.catalog = status
	sb.render()
}

// SetVoice updates the voice indicator.
func (sb *StatusBar) SetVoice(state string) {
	sb.voice = state
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	voice := ""
	if sb.voice != "" && sb.voice != "idle" {
		voice = fmt.Sprintf(" | [deepskyblue]mic:%s[-]", sb.voice)
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s%s | %s", sb.profile, sb.catalog, voice, clock)
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
