// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/terminal.go
// Summary: Terminal value owning the screen grid, parser and scratch config.
// Usage: The host wires one instance to its transport and serializer.

package term

import (
	"github.com/netterm/netterm/config"
)

// Hard bounds of the cell store. The backing array is allocated once with
// the terminal and never grows.
const (
	MaxColumns = 80
	MaxRows    = 25
	maxCells   = MaxColumns * MaxRows
)

// ChangeTopic identifies what part of the observable state changed.
type ChangeTopic int

const (
	TopicContent ChangeTopic = iota
	TopicLabels
)

// savedCursor is one save/restore slot. The full slot (DECSC) carries
// attributes and character set state, the plain slot only the position.
type savedCursor struct {
	valid    bool
	y, x     int
	fg, bg   Color
	attr     Attribute
	charsets [4]byte
	glSlot   int
}

// Terminal is the complete state of one virtual screen: cell grid, cursor,
// mode flags, parser state and the scratch copy of the configuration.
// It is not safe for concurrent use; the owner serializes access.
type Terminal struct {
	cells  [maxCells]Cell
	width  int
	height int

	// Scroll region, inclusive rows.
	top    int
	bottom int

	// Cursor. cursorX == width is the pending-wrap state.
	cursorX, cursorY int
	curFG, curBG     Color
	curAttr          Attribute

	charsets [4]byte
	glSlot   int
	ssSlot   int // single-shift slot for the next glyph only, 0 = none

	cursorVisible bool
	autoWrap      bool
	insertMode    bool
	originMode    bool
	newlineMode   bool
	appKeypad     bool
	appCursorKeys bool
	reverseVideo  bool
	mouseMode     int

	savedFull savedCursor // ESC 7 / ESC 8, with attributes
	savedPos  savedCursor // CSI s / CSI u, position only

	tabStops [MaxColumns]bool

	lastGlyph rune // most recent printable, for REP

	base config.Bundle // persisted baseline
	conf config.Bundle // scratch copy, mutated by escape sequences

	p parser

	emit   func([]byte)
	notify func(ChangeTopic)
	bell   func()
}

// Option configures a Terminal at construction time.
type Option func(*Terminal)

// WithEmitter sets the callback used for DSR/DA replies to the host.
func WithEmitter(emit func([]byte)) Option {
	return func(t *Terminal) { t.emit = emit }
}

// WithNotifier sets the change notification callback.
func WithNotifier(notify func(ChangeTopic)) Option {
	return func(t *Terminal) { t.notify = notify }
}

// WithBell sets the callback invoked on BEL.
func WithBell(bell func()) Option {
	return func(t *Terminal) { t.bell = bell }
}

// New creates a terminal from the persisted configuration baseline.
func New(base config.Bundle, opts ...Option) *Terminal {
	t := &Terminal{base: base}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// Size returns the active grid dimensions.
func (t *Terminal) Size() (rows, cols int) { return t.height, t.width }

// Cursor returns the cursor position. x may equal the width when a wrap
// is pending.
func (t *Terminal) Cursor() (y, x int) { return t.cursorY, t.cursorX }

// CursorVisible reports whether the cursor should be drawn.
func (t *Terminal) CursorVisible() bool { return t.cursorVisible }

// Title returns the scratch title as set by OSC 0/2 or configuration.
func (t *Terminal) Title() string { return t.conf.Title }

// ButtonLabel returns the n-th button label, 0-based.
func (t *Terminal) ButtonLabel(n int) string {
	if n < 0 || n >= len(t.conf.Buttons) {
		return ""
	}
	return t.conf.Buttons[n]
}

// Cell returns a copy of the cell at (y, x), or a zero cell out of range.
func (t *Terminal) Cell(y, x int) Cell {
	if !t.isCoordValid(y, x) {
		return Cell{}
	}
	return t.cells[y*t.width+x]
}

func (t *Terminal) isCoordValid(y, x int) bool {
	return y >= 0 && y < t.height && x >= 0 && x < t.width
}

func (t *Terminal) cell(y, x int) *Cell {
	return &t.cells[y*t.width+x]
}

func (t *Terminal) row(y int) []Cell {
	return t.cells[y*t.width : (y+1)*t.width]
}

// blankCell is the fill value for vacated cells: no glyph, no attributes,
// the current background.
func (t *Terminal) blankCell() Cell {
	return Cell{FG: ColorDefault, BG: t.curBG}
}

func (t *Terminal) notifyContent() {
	if t.notify != nil {
		t.notify(TopicContent)
	}
}

func (t *Terminal) notifyLabels() {
	if t.notify != nil {
		t.notify(TopicLabels)
	}
}

func (t *Terminal) emitBytes(b []byte) {
	if t.emit != nil {
		t.emit(b)
	}
}

// ApplySettings copies the persisted baseline over the scratch config.
// With resetScreen it performs a full reset at the configured size;
// without, it only adopts size, colors and labels, keeping cell content
// (live config change).
func (t *Terminal) ApplySettings(resetScreen bool) {
	if resetScreen {
		t.Reset()
		return
	}
	title := t.conf.Title
	buttons := t.conf.Buttons
	t.conf = t.base
	rows, cols := clampSize(int(t.conf.Height), int(t.conf.Width))
	t.Resize(rows, cols)
	if title != t.conf.Title || buttons != t.conf.Buttons {
		t.notifyLabels()
	}
}

// SetBaseline replaces the persisted baseline used by resets. The caller
// is responsible for persisting it.
func (t *Terminal) SetBaseline(base config.Bundle) { t.base = base }

// Baseline returns the persisted baseline currently in effect.
func (t *Terminal) Baseline() config.Bundle { return t.base }

// RestoreDefaults resets the baseline to factory defaults and re-applies
// it with a full screen reset. Persisting the new baseline is left to the
// host, which observes it via Baseline.
func (t *Terminal) RestoreDefaults() {
	t.base = config.Defaults()
	t.ApplySettings(true)
}

// Reset returns the terminal to its initial state: scratch config from
// the baseline, default modes, cleared grid, homed cursor, default tab
// stops, full-height scroll region and US ASCII character sets.
func (t *Terminal) Reset() {
	t.conf = t.base

	rows, cols := clampSize(int(t.conf.Height), int(t.conf.Width))
	t.width = cols
	t.height = rows
	t.top = 0
	t.bottom = t.height - 1

	t.cursorX, t.cursorY = 0, 0
	t.curFG = ColorDefault
	t.curBG = ColorDefault
	t.curAttr = 0

	t.charsets = [4]byte{CharsetUSASCII, CharsetUSASCII, CharsetUSASCII, CharsetUSASCII}
	t.glSlot = 0
	t.ssSlot = 0

	t.cursorVisible = true
	t.autoWrap = true
	t.insertMode = false
	t.originMode = false
	t.newlineMode = false
	t.appKeypad = false
	t.appCursorKeys = false
	t.reverseVideo = false
	t.mouseMode = 0

	t.savedFull = savedCursor{}
	t.savedPos = savedCursor{}
	t.lastGlyph = 0

	t.resetTabStops()
	t.clearAll()
	t.p.reset()
	t.notifyContent()
}

func (t *Terminal) clearAll() {
	blank := Cell{FG: ColorDefault, BG: ColorDefault}
	for i := 0; i < t.width*t.height; i++ {
		t.cells[i] = blank
	}
}

func clampSize(rows, cols int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	if rows > MaxRows {
		rows = MaxRows
	}
	if cols < 1 {
		cols = 1
	}
	if cols > MaxColumns {
		cols = MaxColumns
	}
	return rows, cols
}
