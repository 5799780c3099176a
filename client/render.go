package client

import (
	"bytes"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/netterm/netterm/term"
)

// paletteColors maps the 16 palette indices to tcell colors.
var paletteColors = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
	tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
}

func tcellColor(c term.Color) tcell.Color {
	if c.IsDefault() || int(c) >= len(paletteColors) {
		return tcell.ColorDefault
	}
	return paletteColors[c]
}

// cellStyle translates one decoded cell into a tcell style. The stream
// already resolved the inverse attribute into swapped colors; reverse
// here only reflects the whole-screen reverse video flag.
func cellStyle(cell term.Cell, reverse bool) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(tcellColor(cell.FG)).
		Background(tcellColor(cell.BG))
	if cell.Attr&term.AttrBold != 0 {
		style = style.Bold(true)
	}
	if cell.Attr&term.AttrFaint != 0 {
		style = style.Dim(true)
	}
	if cell.Attr&term.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if cell.Attr&term.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if cell.Attr&term.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if cell.Attr&term.AttrStrike != 0 {
		style = style.StrikeThrough(true)
	}
	if reverse {
		style = style.Reverse(true)
	}
	return style
}

// RenderSnapshot draws a decoded screen onto a tcell screen.
func RenderSnapshot(screen tcell.Screen, snap *term.Snapshot) {
	reverse := snap.Flags&term.FlagReverseVideo != 0
	for y := 0; y < snap.Rows; y++ {
		x := 0
		for col := 0; col < snap.Cols; col++ {
			cell := snap.Cells[y*snap.Cols+col]
			// Resolve the default sentinels against the configured
			// palette entries carried in the header.
			if cell.FG.IsDefault() && int(snap.DefaultFG) < 16 {
				cell.FG = snap.DefaultFG
			}
			if cell.BG.IsDefault() && int(snap.DefaultBG) < 16 {
				cell.BG = snap.DefaultBG
			}
			r := cell.Rune()
			screen.SetContent(x, y, r, nil, cellStyle(cell, reverse))
			w := runewidth.RuneWidth(r)
			if w < 1 {
				w = 1
			}
			x += w
		}
	}
	if snap.Flags&term.FlagCursorVisible != 0 {
		screen.ShowCursor(snap.CursorX, snap.CursorY)
	} else {
		screen.HideCursor()
	}
}

// Labels decodes a labels payload into the title and button labels.
func Labels(payload []byte) (title string, buttons []string) {
	parts := bytes.Split(payload, []byte{0x01})
	if len(parts) == 0 {
		return "", nil
	}
	title = string(parts[0])
	for _, p := range parts[1:] {
		buttons = append(buttons, string(p))
	}
	return title, buttons
}
