// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/csi.go
// Summary: CSI sequence dispatch, DEC private and ANSI mode handling.

package term

import (
	"fmt"
	"log"
)

// deviceAttributes is the fixed DA reply: VT220-class with color support.
const deviceAttributes = "\x1b[?62;22c"

func csiParam(params []int, i, def int) int {
	if i < len(params) && params[i] != 0 {
		return params[i]
	}
	return def
}

func (t *Terminal) dispatchCSI(final byte, params []int, private byte, intermediate byte) {
	if intermediate != 0 {
		// DECSTR and friends are not implemented; any other
		// intermediate marks a sequence this terminal ignores.
		return
	}
	if private != 0 {
		if private == '?' && (final == 'h' || final == 'l') {
			t.setPrivateModes(params, final == 'h')
			return
		}
		return
	}

	switch final {
	case 'A': // CUU
		t.CursorMove(-csiParam(params, 0, 1), 0, false)
	case 'B': // CUD
		t.CursorMove(csiParam(params, 0, 1), 0, false)
	case 'C': // CUF
		t.CursorMove(0, csiParam(params, 0, 1), false)
	case 'D': // CUB
		t.CursorMove(0, -csiParam(params, 0, 1), false)
	case 'E': // CNL
		t.CursorMove(csiParam(params, 0, 1), 0, false)
		t.cursorX = 0
	case 'F': // CPL
		t.CursorMove(-csiParam(params, 0, 1), 0, false)
		t.cursorX = 0
	case 'G': // CHA
		t.CursorSetX(csiParam(params, 0, 1) - 1)
	case 'd': // VPA
		t.CursorSetY(csiParam(params, 0, 1) - 1)
	case 'H', 'f': // CUP, HVP
		t.CursorSet(csiParam(params, 0, 1)-1, csiParam(params, 1, 1)-1)
	case 'I': // CHT
		t.tabForward(csiParam(params, 0, 1))
	case 'Z': // CBT
		t.tabBackward(csiParam(params, 0, 1))
	case 'J': // ED
		t.Clear(clearModeFor(csiParam(params, 0, 0)))
	case 'K': // EL
		t.ClearLine(clearModeFor(csiParam(params, 0, 0)))
	case '@': // ICH
		t.InsertCharacters(csiParam(params, 0, 1))
	case 'L': // IL
		t.InsertLines(csiParam(params, 0, 1))
	case 'M': // DL
		t.DeleteLines(csiParam(params, 0, 1))
	case 'P': // DCH
		t.DeleteCharacters(csiParam(params, 0, 1))
	case 'X': // ECH
		t.ClearInLine(csiParam(params, 0, 1))
	case 'b': // REP
		t.repeatLastGlyph(csiParam(params, 0, 1))
	case 'S': // SU
		t.ScrollUp(csiParam(params, 0, 1))
	case 'T': // SD
		t.ScrollDown(csiParam(params, 0, 1))
	case 'm': // SGR
		t.handleSGR(params)
	case 'r': // DECSTBM
		top := csiParam(params, 0, 1) - 1
		bottom := csiParam(params, 1, t.height) - 1
		t.SetScrollRegion(top, bottom)
	case 's': // SCOSC
		t.CursorSave(false)
	case 'u': // SCORC
		t.CursorRestore(false)
	case 'n': // DSR
		if csiParam(params, 0, 0) == 6 {
			y, x := t.cursorY, t.cursorX
			if x >= t.width {
				x = t.width - 1
			}
			if t.originMode {
				y -= t.top
			}
			t.emitBytes([]byte(fmt.Sprintf("\x1b[%d;%dR", y+1, x+1)))
		}
	case 'c': // DA
		if csiParam(params, 0, 0) == 0 {
			t.emitBytes([]byte(deviceAttributes))
		}
	case 'g': // TBC
		t.ClearTabStop(csiParam(params, 0, 0))
	case 'h', 'l':
		t.setANSIModes(params, final == 'h')
	case 'q', 't':
		// DECSCA / window manipulation: ignored.
	default:
		log.Printf("Parser: Unhandled CSI final %q, params %v", final, params)
	}
}

func clearModeFor(p int) ClearMode {
	switch p {
	case 1:
		return ClearToCursor
	case 2:
		return ClearAll
	default:
		return ClearFromCursor
	}
}

// setPrivateModes applies DECSET/DECRESET (CSI ? ... h/l).
func (t *Terminal) setPrivateModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case 1: // DECCKM
			t.appCursorKeys = set
		case 3: // DECCOLM - column mode; clamped to the cell store bound
			t.Clear(ClearAll)
			t.SetScrollRegion(0, t.height-1)
			t.Resize(t.height, MaxColumns)
		case 5: // DECSCNM - stored, applied by the renderer
			if t.reverseVideo != set {
				t.reverseVideo = set
				t.notifyContent()
			}
		case 6: // DECOM
			t.originMode = set
			t.CursorSet(0, 0)
		case 7: // DECAWM
			t.autoWrap = set
			t.clearPendingWrap()
		case 25: // DECTCEM
			if t.cursorVisible != set {
				t.cursorVisible = set
				t.notifyContent()
			}
		case 47, 1047, 1049:
			// Alternate screen: single-page core, accepted as a no-op.
		case 66: // DECNKM
			t.appKeypad = set
		case 1000, 1002, 1003, 1005, 1006, 1015:
			// Mouse reporting: stored so DECRQM-style hosts see it, the
			// core itself never reports.
			if set {
				t.mouseMode = mode
			} else if t.mouseMode == mode {
				t.mouseMode = 0
			}
		default:
			log.Printf("Parser: Ignoring private mode %d (set=%v)", mode, set)
		}
	}
}

// setANSIModes applies SM/RM (CSI ... h/l).
func (t *Terminal) setANSIModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case 4: // IRM - insert/replace
			t.insertMode = set
		case 20: // LNM - LF implies CR
			t.newlineMode = set
		default:
			log.Printf("Parser: Ignoring ANSI mode %d (set=%v)", mode, set)
		}
	}
}
