// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/cursor.go
// Summary: Cursor positioning, save/restore slots and tab stops.

package term

// clearPendingWrap leaves the cursor on the last column if a wrap was
// pending.
func (t *Terminal) clearPendingWrap() {
	if t.cursorX >= t.width {
		t.cursorX = t.width - 1
	}
}

// CursorSet moves the cursor to the absolute position (y, x), clipped to
// the grid. In origin mode y is relative to the scroll region top and
// confined to the region.
func (t *Terminal) CursorSet(y, x int) {
	if t.originMode {
		y += t.top
		if y < t.top {
			y = t.top
		}
		if y > t.bottom {
			y = t.bottom
		}
	} else {
		if y < 0 {
			y = 0
		}
		if y >= t.height {
			y = t.height - 1
		}
	}
	if x < 0 {
		x = 0
	}
	if x >= t.width {
		x = t.width - 1
	}
	t.cursorY = y
	t.cursorX = x
	t.notifyContent()
}

// CursorSetX moves the cursor to an absolute column on the current row.
func (t *Terminal) CursorSetX(x int) {
	if x < 0 {
		x = 0
	}
	if x >= t.width {
		x = t.width - 1
	}
	t.cursorX = x
	t.notifyContent()
}

// CursorSetY moves the cursor to an absolute row, keeping the column.
func (t *Terminal) CursorSetY(y int) {
	if t.originMode {
		y += t.top
		if y < t.top {
			y = t.top
		}
		if y > t.bottom {
			y = t.bottom
		}
	} else {
		if y < 0 {
			y = 0
		}
		if y >= t.height {
			y = t.height - 1
		}
	}
	t.cursorY = y
	t.clearPendingWrap()
	t.notifyContent()
}

// CursorMove moves the cursor relative to its position. Horizontal moves
// clip to the row. Vertical moves clip to the scroll region boundary
// unless scroll is set, in which case each excess row scrolls the region.
// A cursor starting outside the region never scrolls.
func (t *Terminal) CursorMove(dy, dx int, scroll bool) {
	t.clearPendingWrap()

	x := t.cursorX + dx
	if x < 0 {
		x = 0
	}
	if x >= t.width {
		x = t.width - 1
	}
	t.cursorX = x

	if dy != 0 {
		inRegion := t.cursorY >= t.top && t.cursorY <= t.bottom
		y := t.cursorY + dy
		if inRegion {
			if y < t.top {
				if scroll {
					t.ScrollDown(t.top - y)
				}
				y = t.top
			} else if y > t.bottom {
				if scroll {
					t.ScrollUp(y - t.bottom)
				}
				y = t.bottom
			}
		} else {
			if y < 0 {
				y = 0
			}
			if y >= t.height {
				y = t.height - 1
			}
		}
		t.cursorY = y
	}
	t.notifyContent()
}

// CursorSave stores the cursor into one of the two save slots. With
// withAttrs it also captures colors, attributes and character set state.
func (t *Terminal) CursorSave(withAttrs bool) {
	s := savedCursor{
		valid: true,
		y:     t.cursorY,
		x:     t.cursorX,
	}
	if s.x >= t.width {
		s.x = t.width - 1
	}
	if withAttrs {
		s.fg = t.curFG
		s.bg = t.curBG
		s.attr = t.curAttr
		s.charsets = t.charsets
		s.glSlot = t.glSlot
		t.savedFull = s
	} else {
		t.savedPos = s
	}
}

// CursorRestore restores the matching save slot. Restoring an empty slot
// restores the defaults instead.
func (t *Terminal) CursorRestore(withAttrs bool) {
	slot := t.savedPos
	if withAttrs {
		slot = t.savedFull
	}
	if !slot.valid {
		t.cursorY, t.cursorX = 0, 0
		if withAttrs {
			t.curFG = ColorDefault
			t.curBG = ColorDefault
			t.curAttr = 0
			t.charsets = [4]byte{CharsetUSASCII, CharsetUSASCII, CharsetUSASCII, CharsetUSASCII}
			t.glSlot = 0
		}
		t.notifyContent()
		return
	}
	y, x := slot.y, slot.x
	if y >= t.height {
		y = t.height - 1
	}
	if x >= t.width {
		x = t.width - 1
	}
	t.cursorY, t.cursorX = y, x
	if withAttrs {
		t.curFG = slot.fg
		t.curBG = slot.bg
		t.curAttr = slot.attr
		t.charsets = slot.charsets
		t.glSlot = slot.glSlot
	}
	t.notifyContent()
}

// --- Tab stops ---

func (t *Terminal) resetTabStops() {
	for i := range t.tabStops {
		t.tabStops[i] = i%8 == 0
	}
}

// SetTabStop marks a tab stop at the cursor column (HTS).
func (t *Terminal) SetTabStop() {
	x := t.cursorX
	if x >= 0 && x < t.width {
		t.tabStops[x] = true
	}
}

// ClearTabStop removes the stop at the cursor (mode 0) or all stops
// (mode 3), matching TBC.
func (t *Terminal) ClearTabStop(mode int) {
	switch mode {
	case 0:
		x := t.cursorX
		if x >= 0 && x < t.width {
			t.tabStops[x] = false
		}
	case 3:
		for i := range t.tabStops {
			t.tabStops[i] = false
		}
	}
}

// tabForward advances the cursor to the n-th following tab stop, or the
// last column.
func (t *Terminal) tabForward(n int) {
	t.clearPendingWrap()
	for ; n > 0; n-- {
		next := t.width - 1
		for x := t.cursorX + 1; x < t.width; x++ {
			if t.tabStops[x] {
				next = x
				break
			}
		}
		t.cursorX = next
	}
	t.notifyContent()
}

// tabBackward moves the cursor to the n-th preceding tab stop, or
// column 0.
func (t *Terminal) tabBackward(n int) {
	t.clearPendingWrap()
	for ; n > 0; n-- {
		prev := 0
		for x := t.cursorX - 1; x >= 0; x-- {
			if t.tabStops[x] {
				prev = x
				break
			}
		}
		t.cursorX = prev
	}
	t.notifyContent()
}

// --- SGR state ---

// SetFG sets the current foreground color for subsequent glyphs.
func (t *Terminal) SetFG(c Color) { t.curFG = c }

// SetBG sets the current background color for subsequent glyphs.
func (t *Terminal) SetBG(c Color) { t.curBG = c }

// AttrEnable turns on attribute bits.
func (t *Terminal) AttrEnable(a Attribute) { t.curAttr |= a }

// AttrDisable turns off attribute bits.
func (t *Terminal) AttrDisable(a Attribute) { t.curAttr &^= a }

// ResetSGR restores default colors and clears all attributes.
func (t *Terminal) ResetSGR() {
	t.curFG = ColorDefault
	t.curBG = ColorDefault
	t.curAttr = 0
}
