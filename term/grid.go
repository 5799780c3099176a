// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/grid.go
// Summary: Grid mutation primitives - glyph placement, clearing, scrolling,
// row and character insertion/deletion, resize.

package term

import (
	"github.com/mattn/go-runewidth"
)

// ClearMode selects the range of a clear operation relative to the cursor.
type ClearMode int

const (
	ClearToCursor ClearMode = iota
	ClearFromCursor
	ClearAll
)

// PutGlyph places one codepoint at the cursor using the current colors,
// attributes and character set, honoring pending wrap and insert mode.
func (t *Terminal) PutGlyph(r rune) {
	slot := t.glSlot
	if t.ssSlot != 0 {
		slot = t.ssSlot
		t.ssSlot = 0
	}
	r = translateCharset(t.charsets[slot], r)
	if runewidth.RuneWidth(r) == 0 {
		// Combining marks and other zero-width input occupy no cell.
		return
	}
	t.lastGlyph = r

	if t.cursorX >= t.width {
		if t.autoWrap {
			t.cursorX = 0
			t.index()
		} else {
			t.cursorX = t.width - 1
		}
	}

	row := t.row(t.cursorY)
	if t.insertMode {
		copy(row[t.cursorX+1:], row[t.cursorX:t.width-1])
	}
	row[t.cursorX] = Cell{Ch: r, FG: t.curFG, BG: t.curBG, Attr: t.curAttr}

	t.cursorX++
	if t.cursorX >= t.width && !t.autoWrap {
		t.cursorX = t.width - 1
	}
	t.notifyContent()
}

// repeatLastGlyph re-places the most recent printable n times (REP).
func (t *Terminal) repeatLastGlyph(n int) {
	if t.lastGlyph == 0 {
		return
	}
	for i := 0; i < n; i++ {
		t.PutGlyph(t.lastGlyph)
	}
}

// index moves the cursor down one row, scrolling the region when the
// cursor sits on its bottom row.
func (t *Terminal) index() {
	if t.cursorY == t.bottom {
		t.ScrollUp(1)
	} else if t.cursorY < t.height-1 {
		t.cursorY++
	}
}

// reverseIndex moves the cursor up one row, scrolling down when the
// cursor sits on the region's top row.
func (t *Terminal) reverseIndex() {
	if t.cursorY == t.top {
		t.ScrollDown(1)
	} else if t.cursorY > 0 {
		t.cursorY--
	}
}

// ScrollUp shifts the scroll region up by n rows, filling vacated rows
// with blanks in the current background.
func (t *Terminal) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	regionH := t.bottom - t.top + 1
	if n > regionH {
		n = regionH
	}
	for y := t.top; y+n <= t.bottom; y++ {
		copy(t.row(y), t.row(y+n))
	}
	blank := t.blankCell()
	for y := t.bottom - n + 1; y <= t.bottom; y++ {
		fillRow(t.row(y), blank)
	}
	t.notifyContent()
}

// ScrollDown shifts the scroll region down by n rows.
func (t *Terminal) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	regionH := t.bottom - t.top + 1
	if n > regionH {
		n = regionH
	}
	for y := t.bottom; y-n >= t.top; y-- {
		copy(t.row(y), t.row(y-n))
	}
	blank := t.blankCell()
	for y := t.top; y < t.top+n; y++ {
		fillRow(t.row(y), blank)
	}
	t.notifyContent()
}

// InsertLines shifts rows [cursor, bottom] down by n within the scroll
// region. A no-op when the cursor is outside the region.
func (t *Terminal) InsertLines(n int) {
	if n <= 0 || t.cursorY < t.top || t.cursorY > t.bottom {
		return
	}
	if n > t.bottom-t.cursorY+1 {
		n = t.bottom - t.cursorY + 1
	}
	for y := t.bottom; y-n >= t.cursorY; y-- {
		copy(t.row(y), t.row(y-n))
	}
	blank := t.blankCell()
	for y := t.cursorY; y < t.cursorY+n; y++ {
		fillRow(t.row(y), blank)
	}
	t.notifyContent()
}

// DeleteLines shifts rows [cursor, bottom] up by n within the scroll
// region. A no-op when the cursor is outside the region.
func (t *Terminal) DeleteLines(n int) {
	if n <= 0 || t.cursorY < t.top || t.cursorY > t.bottom {
		return
	}
	if n > t.bottom-t.cursorY+1 {
		n = t.bottom - t.cursorY + 1
	}
	for y := t.cursorY; y+n <= t.bottom; y++ {
		copy(t.row(y), t.row(y+n))
	}
	blank := t.blankCell()
	for y := t.bottom - n + 1; y <= t.bottom; y++ {
		fillRow(t.row(y), blank)
	}
	t.notifyContent()
}

// InsertCharacters shifts cells right of the cursor rightward by n,
// dropping cells pushed past the right edge.
func (t *Terminal) InsertCharacters(n int) {
	if n <= 0 || t.cursorY < 0 || t.cursorY >= t.height {
		return
	}
	x := t.cursorX
	if x >= t.width {
		x = t.width - 1
	}
	if n > t.width-x {
		n = t.width - x
	}
	row := t.row(t.cursorY)
	copy(row[x+n:], row[x:t.width-n])
	blank := t.blankCell()
	for i := x; i < x+n; i++ {
		row[i] = blank
	}
	t.notifyContent()
}

// DeleteCharacters removes n cells at the cursor, shifting the remainder
// of the row left and blank-filling the tail.
func (t *Terminal) DeleteCharacters(n int) {
	if n <= 0 || t.cursorY < 0 || t.cursorY >= t.height {
		return
	}
	x := t.cursorX
	if x >= t.width {
		x = t.width - 1
	}
	if n > t.width-x {
		n = t.width - x
	}
	row := t.row(t.cursorY)
	copy(row[x:], row[x+n:])
	blank := t.blankCell()
	for i := t.width - n; i < t.width; i++ {
		row[i] = blank
	}
	t.notifyContent()
}

// ClearInLine blanks count cells starting at the cursor without moving
// anything (ECH).
func (t *Terminal) ClearInLine(count int) {
	if count <= 0 || t.cursorY < 0 || t.cursorY >= t.height {
		return
	}
	x := t.cursorX
	if x >= t.width {
		x = t.width - 1
	}
	if count > t.width-x {
		count = t.width - x
	}
	row := t.row(t.cursorY)
	blank := t.blankCell()
	for i := x; i < x+count; i++ {
		row[i] = blank
	}
	t.notifyContent()
}

// Clear blanks a screen range relative to the cursor. The cursor cell is
// included in both directional modes.
func (t *Terminal) Clear(mode ClearMode) {
	blank := t.blankCell()
	x := t.cursorX
	if x >= t.width {
		x = t.width - 1
	}
	switch mode {
	case ClearToCursor:
		end := t.cursorY*t.width + x + 1
		for i := 0; i < end; i++ {
			t.cells[i] = blank
		}
	case ClearFromCursor:
		start := t.cursorY*t.width + x
		for i := start; i < t.width*t.height; i++ {
			t.cells[i] = blank
		}
	case ClearAll:
		for i := 0; i < t.width*t.height; i++ {
			t.cells[i] = blank
		}
	}
	t.notifyContent()
}

// ClearLine blanks a range of the cursor row.
func (t *Terminal) ClearLine(mode ClearMode) {
	if t.cursorY < 0 || t.cursorY >= t.height {
		return
	}
	row := t.row(t.cursorY)
	blank := t.blankCell()
	x := t.cursorX
	if x >= t.width {
		x = t.width - 1
	}
	start, end := 0, t.width
	switch mode {
	case ClearToCursor:
		end = x + 1
	case ClearFromCursor:
		start = x
	}
	for i := start; i < end; i++ {
		row[i] = blank
	}
	t.notifyContent()
}

// FillWithE overwrites every cell with 'E' in default colors, the DEC
// screen alignment pattern (ESC # 8).
func (t *Terminal) FillWithE() {
	e := Cell{Ch: 'E', FG: ColorDefault, BG: ColorDefault}
	for i := 0; i < t.width*t.height; i++ {
		t.cells[i] = e
	}
	t.notifyContent()
}

// Resize changes the active grid extent in place. Surviving cells keep
// their content, newly exposed cells are blank. Tab stops and the scroll
// region are rebuilt, the cursor is clipped.
func (t *Terminal) Resize(rows, cols int) {
	rows, cols = clampSize(rows, cols)
	if rows == t.height && cols == t.width {
		return
	}

	var tmp [maxCells]Cell
	blank := Cell{FG: ColorDefault, BG: ColorDefault}
	for i := 0; i < rows*cols; i++ {
		tmp[i] = blank
	}
	copyRows := t.height
	if rows < copyRows {
		copyRows = rows
	}
	copyCols := t.width
	if cols < copyCols {
		copyCols = cols
	}
	for y := 0; y < copyRows; y++ {
		copy(tmp[y*cols:y*cols+copyCols], t.cells[y*t.width:y*t.width+copyCols])
	}
	copy(t.cells[:rows*cols], tmp[:rows*cols])

	t.width = cols
	t.height = rows
	t.top = 0
	t.bottom = rows - 1
	t.conf.Width = uint32(cols)
	t.conf.Height = uint32(rows)
	t.resetTabStops()

	if t.cursorY >= rows {
		t.cursorY = rows - 1
	}
	if t.cursorX >= cols {
		t.cursorX = cols - 1
	}
	t.notifyContent()
}

// SetScrollRegion sets the scroll region to the inclusive row range
// [top, bottom], 0-based. Invalid ranges reset to the full height. The
// cursor is homed, respecting origin mode.
func (t *Terminal) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= t.height || bottom < 0 {
		bottom = t.height - 1
	}
	if top >= bottom {
		top = 0
		bottom = t.height - 1
	}
	t.top = top
	t.bottom = bottom
	t.CursorSet(0, 0)
}

// ScrollRegion returns the active scroll region, inclusive.
func (t *Terminal) ScrollRegion() (top, bottom int) { return t.top, t.bottom }

func fillRow(row []Cell, blank Cell) {
	for i := range row {
		row[i] = blank
	}
}
