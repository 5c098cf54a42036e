package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	MenuKeyColor     tcell.Color
	TitleColor       tcell.Color
	PriceColor       tcell.Color
	SoldColor        tcell.Color
	FlashInfoColor   tcell.Color
	FlashWarnColor   tcell.Color
	FlashErrColor    tcell.Color
	VoiceColor       tcell.Color
}

// DefaultTheme returns a dark theme in the campus black and gold.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorWhiteSmoke,
		BorderColor:      tcell.ColorGoldenrod,
		BorderFocusColor: tcell.ColorGold,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorGoldenrod,
		MenuKeyColor:     tcell.ColorGold,
		TitleColor:       tcell.ColorGold,
		PriceColor:       tcell.ColorMediumSpringGreen,
		SoldColor:        tcell.ColorGray,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashWarnColor:   tcell.ColorOrange,
		FlashErrColor:    tcell.ColorOrangeRed,
		VoiceColor:       tcell.ColorDeepSkyBlue,
	}
}
