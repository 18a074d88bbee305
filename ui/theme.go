package ui

import "github.com/gdamore/tcell/v2"

var (
	ColorBg        = tcell.NewRGBColor(16, 16, 24)
	ColorFg        = tcell.ColorWhite
	ColorBorder    = tcell.NewRGBColor(96, 96, 128)
	ColorTitle     = tcell.ColorWhite
	ColorHighlight = tcell.NewRGBColor(255, 102, 170)
)
