// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/sgr.go
// Summary: SGR (Select Graphic Rendition) - colors and text attributes.

package term

// handleSGR processes the parameters of a CSI ... m sequence. Colors are
// 4-bit palette indices; 256-color selections collapse onto the nearest
// of the 16.
func (t *Terminal) handleSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			t.ResetSGR()
		case p == 1:
			t.AttrEnable(AttrBold)
		case p == 2:
			t.AttrEnable(AttrFaint)
		case p == 3:
			t.AttrEnable(AttrItalic)
		case p == 4:
			t.AttrEnable(AttrUnderline)
		case p == 5:
			t.AttrEnable(AttrBlink)
		case p == 7:
			t.AttrEnable(AttrInverse)
		case p == 9:
			t.AttrEnable(AttrStrike)
		case p == 20:
			t.AttrEnable(AttrFraktur)
		case p == 22:
			t.AttrDisable(AttrBold | AttrFaint)
		case p == 23:
			t.AttrDisable(AttrItalic | AttrFraktur)
		case p == 24:
			t.AttrDisable(AttrUnderline)
		case p == 25:
			t.AttrDisable(AttrBlink)
		case p == 27:
			t.AttrDisable(AttrInverse)
		case p == 29:
			t.AttrDisable(AttrStrike)
		case p >= 30 && p <= 37:
			t.SetFG(Color(p - 30))
		case p == 39:
			t.SetFG(ColorDefault)
		case p >= 40 && p <= 47:
			t.SetBG(Color(p - 40))
		case p == 49:
			t.SetBG(ColorDefault)
		case p >= 90 && p <= 97:
			t.SetFG(Color(p - 90 + 8))
		case p >= 100 && p <= 107:
			t.SetBG(Color(p - 100 + 8))
		case p == 38:
			if c, used, ok := extendedColor(params[i+1:]); ok {
				t.SetFG(c)
				i += used
			}
		case p == 48:
			if c, used, ok := extendedColor(params[i+1:]); ok {
				t.SetBG(c)
				i += used
			}
		}
		i++
	}
}

// extendedColor decodes the tail of a 38/48 sequence: the ;5;N palette
// form and the ;2;R;G;B true-color form, both folded onto the 16-color
// palette. Returns the consumed parameter count.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) >= 2 && rest[0] == 5 {
		return palette16(rest[1]), 2, true
	}
	if len(rest) >= 4 && rest[0] == 2 {
		// True-color is outside the cell model; approximate through the
		// 6x6x6 cube and fold like any palette index.
		r, g, b := rest[1], rest[2], rest[3]
		idx := 16 + 36*(clamp255(r)/51) + 6*(clamp255(g)/51) + clamp255(b)/51
		return palette16(idx), 4, true
	}
	return 0, 0, false
}

// palette16 maps a 256-color palette index to the nearest of the 16
// palette entries. 0-15 pass through, the 6x6x6 cube and the gray ramp
// pick by brightness per channel.
func palette16(n int) Color {
	if n < 0 {
		return ColorBlack
	}
	if n < 16 {
		return Color(n)
	}
	if n < 232 {
		// 6x6x6 color cube.
		n -= 16
		r := n / 36
		g := (n / 6) % 6
		b := n % 6
		c := Color(0)
		if r >= 3 {
			c |= 1
		}
		if g >= 3 {
			c |= 2
		}
		if b >= 3 {
			c |= 4
		}
		if r >= 5 || g >= 5 || b >= 5 {
			c |= 8
		}
		return c
	}
	if n < 256 {
		// Grayscale ramp: dark grays to black, mid to bright black,
		// light to white.
		switch {
		case n < 238:
			return ColorBlack
		case n < 244:
			return ColorBlack | 8
		case n < 250:
			return ColorWhite
		default:
			return ColorWhite | 8
		}
	}
	return ColorWhite
}

func clamp255(n int) int {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
