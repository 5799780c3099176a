// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser.go
// Summary: Byte-driven VT parser state machine with UTF-8 accumulation.
// Usage: Terminal.Feed pushes raw bytes from the transport through it.
// Notes: Follows the VT500 parser transitions; lenient on garbage input.

package term

import "unicode/utf8"

type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateEscapeInt
	stateCSIEntry
	stateCSIParam
	stateCSIInt
	stateCSIIgnore
	stateOSC
	stateOSCEsc
	stateDCS
	stateDCSEsc
	stateCharset
	stateUTF8
)

const (
	maxParams     = 16
	maxParamValue = 16383
	oscBufSize    = 128
)

// byteClass partitions the byte range for the state machine. Precomputed
// once into a 256-entry table.
type byteClass uint8

const (
	clsC0 byteClass = iota
	clsPrint
	clsDel
	clsCont  // 0x80-0xBF
	clsLead2 // 0xC2-0xDF
	clsLead3 // 0xE0-0xEF
	clsLead4 // 0xF0-0xF4
	clsBad   // 0xC0, 0xC1, 0xF5-0xFF
)

var byteClasses [256]byteClass

func init() {
	for i := 0; i < 256; i++ {
		switch {
		case i < 0x20:
			byteClasses[i] = clsC0
		case i < 0x7f:
			byteClasses[i] = clsPrint
		case i == 0x7f:
			byteClasses[i] = clsDel
		case i < 0xc0:
			byteClasses[i] = clsCont
		case i < 0xc2:
			byteClasses[i] = clsBad
		case i < 0xe0:
			byteClasses[i] = clsLead2
		case i < 0xf0:
			byteClasses[i] = clsLead3
		case i < 0xf5:
			byteClasses[i] = clsLead4
		default:
			byteClasses[i] = clsBad
		}
	}
}

// parser holds the interpreter state between Feed calls. All buffers are
// fixed-size; nothing allocates per byte.
type parser struct {
	state parseState

	params       [maxParams]int
	nParams      int
	curParam     int
	private      byte
	intermediate byte

	charsetSlot int

	oscBuf [oscBufSize]byte
	oscLen int

	utf8Buf  [4]byte
	utf8Len  int
	utf8Need int
}

func (p *parser) reset() {
	*p = parser{}
}

func (p *parser) clearSequence() {
	p.nParams = 0
	p.curParam = 0
	p.private = 0
	p.intermediate = 0
}

// Feed consumes a byte slice from the transport and advances the screen
// state. Safe to call with any length, including zero, and with
// sequences split at arbitrary byte boundaries.
func (t *Terminal) Feed(data []byte) {
	for _, b := range data {
		t.step(b)
	}
}

func (t *Terminal) step(b byte) {
	p := &t.p

	if p.state == stateUTF8 {
		t.stepUTF8(b)
		return
	}

	// String-collecting states consume C0 themselves.
	switch p.state {
	case stateOSC, stateOSCEsc, stateDCS, stateDCSEsc:
		t.stepString(b)
		return
	}

	if b < 0x20 {
		switch b {
		case 0x18, 0x1a: // CAN, SUB abort any sequence
			p.state = stateGround
		case 0x1b:
			p.clearSequence()
			p.state = stateEscape
		default:
			// Other C0 controls execute immediately, even while a
			// CSI or ESC sequence is being collected.
			t.execC0(b)
		}
		return
	}

	switch p.state {
	case stateGround:
		t.stepGround(b)
	case stateEscape:
		t.stepEscape(b)
	case stateEscapeInt:
		t.stepEscapeInt(b)
	case stateCSIEntry, stateCSIParam, stateCSIInt, stateCSIIgnore:
		t.stepCSI(b)
	case stateCharset:
		t.stepCharsetDesignate(b)
	}
}

func (t *Terminal) execC0(b byte) {
	switch b {
	case 0x07: // BEL
		if t.bell != nil {
			t.bell()
		}
	case 0x08: // BS
		t.CursorMove(0, -1, false)
	case 0x09: // HT
		t.tabForward(1)
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		t.index()
		if t.newlineMode {
			t.cursorX = 0
		}
		t.clearPendingWrap()
		t.notifyContent()
	case 0x0d: // CR
		t.cursorX = 0
		t.notifyContent()
	case 0x0e: // SO - invoke G1 into GL
		t.glSlot = 1
	case 0x0f: // SI - invoke G0 into GL
		t.glSlot = 0
	}
}

func (t *Terminal) stepGround(b byte) {
	p := &t.p
	switch byteClasses[b] {
	case clsPrint:
		t.PutGlyph(rune(b))
	case clsDel:
		// DEL is ignored
	case clsLead2:
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = 2
		p.state = stateUTF8
	case clsLead3:
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = 3
		p.state = stateUTF8
	case clsLead4:
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = 4
		p.state = stateUTF8
	case clsCont, clsBad:
		t.PutGlyph(utf8.RuneError)
	}
}

func (t *Terminal) stepUTF8(b byte) {
	p := &t.p
	if byteClasses[b] != clsCont {
		// Truncated sequence: emit the replacement glyph and resync on
		// the offending byte.
		p.state = stateGround
		t.PutGlyph(utf8.RuneError)
		t.step(b)
		return
	}
	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	if p.utf8Len < p.utf8Need {
		return
	}
	p.state = stateGround
	r, size := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	if r == utf8.RuneError || size != p.utf8Need {
		// Overlong or otherwise invalid encoding.
		t.PutGlyph(utf8.RuneError)
		return
	}
	t.PutGlyph(r)
}

func (t *Terminal) stepEscape(b byte) {
	p := &t.p
	if b >= 0x20 && b <= 0x2f {
		p.intermediate = b
		switch b {
		case '(', ')', '*', '+':
			p.charsetSlot = int(b - '(')
			p.state = stateCharset
		default:
			p.state = stateEscapeInt
		}
		return
	}
	p.state = stateGround
	switch b {
	case '[':
		p.clearSequence()
		p.state = stateCSIEntry
	case ']':
		p.oscLen = 0
		p.state = stateOSC
	case 'P':
		p.state = stateDCS
	case '7':
		t.CursorSave(true)
	case '8':
		t.CursorRestore(true)
	case 'c':
		t.Reset()
	case 'D': // IND
		t.index()
		t.notifyContent()
	case 'M': // RI
		t.reverseIndex()
		t.notifyContent()
	case 'E': // NEL
		t.cursorX = 0
		t.index()
		t.notifyContent()
	case 'H': // HTS
		t.SetTabStop()
	case 'n': // LS2
		t.glSlot = 2
	case 'o': // LS3
		t.glSlot = 3
	case 'N': // SS2
		t.ssSlot = 2
	case 'O': // SS3
		t.ssSlot = 3
	case '=': // DECKPAM
		t.appKeypad = true
	case '>': // DECKPNM
		t.appKeypad = false
	default:
		// Unknown ESC final: discard silently.
	}
}

func (t *Terminal) stepEscapeInt(b byte) {
	p := &t.p
	if b >= 0x20 && b <= 0x2f {
		p.intermediate = b
		return
	}
	p.state = stateGround
	if p.intermediate == '#' && b == '8' {
		t.FillWithE()
	}
}

func (t *Terminal) stepCSI(b byte) {
	p := &t.p
	switch {
	case b >= 0x30 && b <= 0x39: // digit
		if p.state == stateCSIIgnore {
			return
		}
		if p.state == stateCSIInt {
			p.state = stateCSIIgnore
			return
		}
		p.state = stateCSIParam
		p.curParam = p.curParam*10 + int(b-'0')
		if p.curParam > maxParamValue {
			p.curParam = maxParamValue
		}
	case b == ';':
		if p.state == stateCSIIgnore {
			return
		}
		p.state = stateCSIParam
		p.pushParam()
	case b == ':':
		// Colon sub-parameters are not supported.
		p.state = stateCSIIgnore
	case b >= 0x3c && b <= 0x3f: // private markers < = > ?
		if p.state != stateCSIEntry {
			p.state = stateCSIIgnore
			return
		}
		p.private = b
		p.state = stateCSIParam
	case b >= 0x20 && b <= 0x2f: // intermediates
		if p.state == stateCSIIgnore {
			return
		}
		if p.state == stateCSIParam {
			p.pushParam()
		}
		p.intermediate = b
		p.state = stateCSIInt
	case b == 0x7f: // DEL is ignored mid-sequence
	case b >= 0x40 && b <= 0x7e: // final
		if p.state == stateCSIIgnore {
			p.state = stateGround
			return
		}
		if p.state == stateCSIParam {
			p.pushParam()
		}
		params := p.params[:p.nParams]
		private := p.private
		intermediate := p.intermediate
		p.state = stateGround
		t.dispatchCSI(b, params, private, intermediate)
	default:
		p.state = stateCSIIgnore
	}
}

func (p *parser) pushParam() {
	if p.nParams >= maxParams {
		// Excess parameters are ignored.
		p.curParam = 0
		return
	}
	p.params[p.nParams] = p.curParam
	p.nParams++
	p.curParam = 0
}

func (t *Terminal) stepString(b byte) {
	p := &t.p
	switch p.state {
	case stateOSC:
		switch {
		case b == 0x07:
			t.dispatchOSC(p.oscBuf[:p.oscLen])
			p.state = stateGround
		case b == 0x1b:
			p.state = stateOSCEsc
		case b == 0x18 || b == 0x1a:
			p.state = stateGround
		case b >= 0x20:
			if p.oscLen < oscBufSize {
				p.oscBuf[p.oscLen] = b
				p.oscLen++
			}
			// Past capacity the remainder is discarded up to the
			// terminator; the handler still sees the truncated prefix.
		}
	case stateOSCEsc:
		if b == '\\' { // ST
			t.dispatchOSC(p.oscBuf[:p.oscLen])
			p.state = stateGround
			return
		}
		// ESC aborted the string and begins a new sequence.
		p.clearSequence()
		p.state = stateEscape
		t.step(b)
	case stateDCS:
		switch b {
		case 0x1b:
			p.state = stateDCSEsc
		case 0x18, 0x1a:
			p.state = stateGround
		}
	case stateDCSEsc:
		if b == '\\' {
			p.state = stateGround
			return
		}
		p.clearSequence()
		p.state = stateEscape
		t.step(b)
	}
}

func (t *Terminal) stepCharsetDesignate(b byte) {
	p := &t.p
	p.state = stateGround
	if b >= 0x30 && b <= 0x7e {
		if validDesignator(b) {
			t.charsets[p.charsetSlot] = b
		}
		return
	}
	// Not a final byte: the sequence is malformed, reprocess in ground.
	t.step(b)
}
