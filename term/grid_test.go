// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/grid_test.go
// Summary: Scrolling, insertion, deletion and clearing tests.

package term

import "testing"

func fillRows(h *TestHarness, rows []string) {
	h.Send("\x1b[H")
	for i, row := range rows {
		if i > 0 {
			h.Send("\r\n")
		}
		h.Send(row)
	}
}

func TestScrollUpDown(t *testing.T) {
	h := NewTestHarness(4, 5)
	fillRows(h, []string{"aaaa", "bbbb", "cccc", "dddd"})

	h.Send("\x1b[S") // scroll up one
	h.AssertText(t, 0, 0, "bbbb")
	h.AssertText(t, 2, 0, "dddd")
	h.AssertRowBlank(t, 3)

	h.Send("\x1b[T") // scroll down one
	h.AssertRowBlank(t, 0)
	h.AssertText(t, 1, 0, "bbbb")
}

// scroll_up(n) then scroll_down(n) preserves the surviving rows
// (invariant 5).
func TestScrollRoundTrip(t *testing.T) {
	h := NewTestHarness(5, 4)
	fillRows(h, []string{"1111", "2222", "3333", "4444", "5555"})

	h.term.ScrollUp(2)
	h.term.ScrollDown(2)

	h.AssertRowBlank(t, 0)
	h.AssertRowBlank(t, 1)
	h.AssertText(t, 2, 0, "3333")
	h.AssertText(t, 3, 0, "4444")
	h.AssertText(t, 4, 0, "5555")
}

func TestScrollRegionConfinesScrolling(t *testing.T) {
	h := NewTestHarness(5, 4)
	fillRows(h, []string{"top1", "in-a", "in-b", "in-c", "bot1"})

	h.Send("\x1b[2;4r") // region rows 1-3 (0-based)
	h.AssertScrollRegion(t, 1, 3)
	h.AssertCursor(t, 0, 0) // DECSTBM homes the cursor

	h.term.ScrollUp(1)
	h.AssertText(t, 0, 0, "top1")
	h.AssertText(t, 1, 0, "in-b")
	h.AssertText(t, 2, 0, "in-c")
	h.AssertRowBlank(t, 3)
	h.AssertText(t, 4, 0, "bot1")
}

func TestScrollAtRegionBottom(t *testing.T) {
	h := NewTestHarness(5, 4)
	fillRows(h, []string{"top1", "in-a", "in-b", "in-c", "bot1"})
	h.Send("\x1b[2;4r")

	h.Send("\x1b[4;1H\n") // LF on the region bottom scrolls the region
	h.AssertText(t, 1, 0, "in-b")
	h.AssertRowBlank(t, 3)
	h.AssertText(t, 4, 0, "bot1")
}

func TestInsertDeleteLines(t *testing.T) {
	h := NewTestHarness(4, 5)
	fillRows(h, []string{"aaaa", "bbbb", "cccc", "dddd"})

	h.Send("\x1b[2;1H\x1b[L")
	h.AssertText(t, 0, 0, "aaaa")
	h.AssertRowBlank(t, 1)
	h.AssertText(t, 2, 0, "bbbb")
	h.AssertText(t, 3, 0, "cccc")

	h.Send("\x1b[M")
	h.AssertText(t, 1, 0, "bbbb")
	h.AssertText(t, 2, 0, "cccc")
	h.AssertRowBlank(t, 3)
}

func TestInsertDeleteLinesOutsideRegionIsNoop(t *testing.T) {
	h := NewTestHarness(5, 4)
	fillRows(h, []string{"1111", "2222", "3333", "4444", "5555"})
	h.Send("\x1b[2;4r")

	h.term.CursorSet(0, 0)
	h.term.originMode = false
	h.term.cursorY = 4 // below the region
	h.term.InsertLines(1)
	h.term.DeleteLines(1)
	h.AssertText(t, 4, 0, "5555")
}

func TestInsertDeleteCharacters(t *testing.T) {
	h := NewTestHarness(2, 8)
	h.Send("abcdef")
	h.Send("\x1b[1;2H\x1b[2@") // insert two blanks at 'b'
	h.AssertText(t, 0, 0, "a  bcde")

	h.Send("\x1b[2P") // delete them again
	h.AssertText(t, 0, 0, "abcde")
}

// insert_characters(n) followed by delete_characters(n) leaves the head
// of the row unchanged (invariant 4).
func TestInsertDeleteCharactersRoundTrip(t *testing.T) {
	h := NewTestHarness(2, 10)
	h.Send("0123456789")
	h.Send("\x1b[1;4H")
	h.term.InsertCharacters(3)
	h.term.DeleteCharacters(3)
	h.AssertText(t, 0, 0, "0123456")
	for x := 7; x < 10; x++ {
		h.AssertRune(t, 0, x, ' ')
	}
}

func TestEraseCharacters(t *testing.T) {
	h := NewTestHarness(2, 8)
	h.Send("abcdefgh")
	h.Send("\x1b[1;3H\x1b[3X")
	h.AssertText(t, 0, 0, "ab   fgh")
	h.AssertCursor(t, 0, 2) // ECH does not move the cursor
}

func TestClearLineModes(t *testing.T) {
	h := NewTestHarness(2, 8)
	h.Send("abcdefgh")
	h.Send("\x1b[1;4H\x1b[K") // from cursor
	h.AssertText(t, 0, 0, "abc     ")

	h.Send("\rabcdefgh\x1b[1;4H\x1b[1K") // to cursor, inclusive
	h.AssertText(t, 0, 0, "    efgh")

	h.Send("\x1b[2K")
	h.AssertRowBlank(t, 0)
}

func TestClearScreenModes(t *testing.T) {
	h := NewTestHarness(3, 4)
	fillRows(h, []string{"aaaa", "bbbb", "cccc"})

	h.Send("\x1b[2;2H\x1b[J") // from cursor to end
	h.AssertText(t, 0, 0, "aaaa")
	h.AssertText(t, 1, 0, "b   ")
	h.AssertRowBlank(t, 2)

	fillRows(h, []string{"aaaa", "bbbb", "cccc"})
	h.Send("\x1b[2;2H\x1b[1J") // start to cursor, inclusive
	h.AssertRowBlank(t, 0)
	h.AssertText(t, 1, 0, "  bb")
	h.AssertText(t, 2, 0, "cccc")
}

func TestClearUsesCurrentBackground(t *testing.T) {
	h := NewTestHarness(2, 4)
	h.Send("\x1b[44m\x1b[2J")
	cell := h.Cell(0, 0)
	if cell.BG != ColorBlue {
		t.Errorf("cleared bg: expected blue, got %d", cell.BG)
	}
	if cell.Attr != 0 {
		t.Errorf("cleared attrs: expected none, got %v", cell.Attr)
	}
}

func TestInsertMode(t *testing.T) {
	h := NewTestHarness(2, 6)
	h.Send("abc\x1b[1;1H\x1b[4hX\x1b[4l")
	h.AssertText(t, 0, 0, "Xabc")
}

func TestResizePreservesContent(t *testing.T) {
	h := NewTestHarness(4, 6)
	fillRows(h, []string{"aaaaaa", "bbbbbb", "cccccc", "dddddd"})

	h.term.Resize(2, 4)
	h.AssertText(t, 0, 0, "aaaa")
	h.AssertText(t, 1, 0, "bbbb")
	rows, cols := h.term.Size()
	if rows != 2 || cols != 4 {
		t.Fatalf("size: expected 2x4, got %dx%d", rows, cols)
	}

	h.term.Resize(4, 6)
	h.AssertText(t, 0, 0, "aaaa  ")
	h.AssertRowBlank(t, 2)
	h.AssertScrollRegion(t, 0, 3)
}

func TestResizeClampsToBounds(t *testing.T) {
	h := NewTestHarness(4, 6)
	h.term.Resize(100, 200)
	rows, cols := h.term.Size()
	if rows != MaxRows || cols != MaxColumns {
		t.Fatalf("size: expected %dx%d, got %dx%d", MaxRows, MaxColumns, rows, cols)
	}
}
