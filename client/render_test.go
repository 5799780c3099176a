package client

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/netterm/netterm/term"
)

func TestTcellColorMapping(t *testing.T) {
	if got := tcellColor(term.ColorDefault); got != tcell.ColorDefault {
		t.Errorf("default: got %v", got)
	}
	if got := tcellColor(term.ColorRed); got != tcell.ColorMaroon {
		t.Errorf("red: got %v", got)
	}
	if got := tcellColor(term.ColorRed | 8); got != tcell.ColorRed {
		t.Errorf("bright red: got %v", got)
	}
}

func TestCellStyleAttributes(t *testing.T) {
	cell := term.Cell{Ch: 'x', FG: term.ColorGreen, BG: term.ColorDefault, Attr: term.AttrBold | term.AttrUnderline}
	style := cellStyle(cell, false)
	fg, _, attrs := style.Decompose()
	if fg != tcell.ColorGreen {
		t.Errorf("fg: got %v", fg)
	}
	if attrs&tcell.AttrBold == 0 || attrs&tcell.AttrUnderline == 0 {
		t.Errorf("attrs: got %v", attrs)
	}

	style = cellStyle(term.Cell{}, true)
	_, _, attrs = style.Decompose()
	if attrs&tcell.AttrReverse == 0 {
		t.Error("screen-wide reverse must set the reverse attribute")
	}
}

func TestLabelsDecode(t *testing.T) {
	payload := []byte("Title\x01One\x01\x01Three\x01\x01")
	title, buttons := Labels(payload)
	if title != "Title" {
		t.Errorf("title: got %q", title)
	}
	if len(buttons) != 5 {
		t.Fatalf("buttons: expected 5, got %d", len(buttons))
	}
	if buttons[0] != "One" || buttons[1] != "" || buttons[2] != "Three" {
		t.Errorf("buttons: got %v", buttons)
	}
}
