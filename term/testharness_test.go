// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/testharness_test.go
// Summary: Test harness for control sequence testing.
// Usage: Used by test files to feed sequences and verify grid state.

package term

import (
	"fmt"
	"strings"
	"testing"

	"github.com/netterm/netterm/config"
)

// TestHarness drives a terminal and verifies its observable state.
type TestHarness struct {
	term *Terminal

	ContentNotifies int
	LabelNotifies   int
	Bells           int
	Emitted         []byte
}

// NewTestHarness creates a terminal of the given size with counting
// callbacks installed.
func NewTestHarness(rows, cols int) *TestHarness {
	h := &TestHarness{}
	base := config.Defaults()
	base.Width = uint32(cols)
	base.Height = uint32(rows)
	h.term = New(base,
		WithEmitter(func(b []byte) { h.Emitted = append(h.Emitted, b...) }),
		WithNotifier(func(topic ChangeTopic) {
			switch topic {
			case TopicContent:
				h.ContentNotifies++
			case TopicLabels:
				h.LabelNotifies++
			}
		}),
		WithBell(func() { h.Bells++ }),
	)
	return h
}

// Send feeds a string of bytes through the parser.
func (h *TestHarness) Send(seq string) {
	h.term.Feed([]byte(seq))
}

// SendBytewise feeds the sequence one byte at a time, exercising
// resumption across Feed boundaries.
func (h *TestHarness) SendBytewise(seq string) {
	for i := 0; i < len(seq); i++ {
		h.term.Feed([]byte{seq[i]})
	}
}

// Cell returns the cell at (y, x).
func (h *TestHarness) Cell(y, x int) Cell {
	return h.term.Cell(y, x)
}

// Cursor returns the cursor position (y, x).
func (h *TestHarness) Cursor() (int, int) {
	return h.term.Cursor()
}

// AssertCursor verifies the cursor position.
func (h *TestHarness) AssertCursor(t *testing.T, wantY, wantX int) {
	t.Helper()
	y, x := h.Cursor()
	if y != wantY || x != wantX {
		t.Errorf("cursor: expected (%d,%d), got (%d,%d)", wantY, wantX, y, x)
	}
}

// AssertRune verifies the glyph at (y, x), treating empty as space.
func (h *TestHarness) AssertRune(t *testing.T, y, x int, want rune) {
	t.Helper()
	got := h.Cell(y, x).Rune()
	if got != want {
		t.Errorf("cell (%d,%d): expected %q, got %q", y, x, want, got)
	}
}

// AssertText verifies a run of glyphs starting at (y, x).
func (h *TestHarness) AssertText(t *testing.T, y, x int, want string) {
	t.Helper()
	for i, r := range want {
		h.AssertRune(t, y, x+i, r)
	}
}

// AssertRowBlank verifies that every cell of a row is blank.
func (h *TestHarness) AssertRowBlank(t *testing.T, y int) {
	t.Helper()
	_, cols := h.term.Size()
	for x := 0; x < cols; x++ {
		if got := h.Cell(y, x).Rune(); got != ' ' {
			t.Errorf("cell (%d,%d): expected blank, got %q", y, x, got)
		}
	}
}

// AssertScrollRegion verifies the active scroll region.
func (h *TestHarness) AssertScrollRegion(t *testing.T, top, bottom int) {
	t.Helper()
	gotTop, gotBottom := h.term.ScrollRegion()
	if gotTop != top || gotBottom != bottom {
		t.Errorf("scroll region: expected [%d,%d], got [%d,%d]", top, bottom, gotTop, gotBottom)
	}
}

// Dump renders the grid as text for debugging failed tests.
func (h *TestHarness) Dump() string {
	rows, cols := h.term.Size()
	y, x := h.Cursor()
	var sb strings.Builder
	fmt.Fprintf(&sb, "terminal %dx%d (cursor at %d,%d)\n", cols, rows, y, x)
	sb.WriteString(strings.Repeat("=", cols) + "\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sb.WriteRune(h.Cell(r, c).Rune())
		}
		fmt.Fprintf(&sb, "|%d\n", r)
	}
	sb.WriteString(strings.Repeat("=", cols) + "\n")
	return sb.String()
}
