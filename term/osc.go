// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/osc.go
// Summary: OSC string dispatch - window title and button labels.

package term

import (
	"bytes"
	"strconv"

	"github.com/netterm/netterm/config"
)

// Button label OSC commands: 81 sets button 1 ... 85 sets button 5.
const (
	oscButtonBase = 80
	buttonCount   = 5
)

func (t *Terminal) dispatchOSC(payload []byte) {
	idx := bytes.IndexByte(payload, ';')
	if idx < 0 {
		return
	}
	command, err := strconv.Atoi(string(payload[:idx]))
	if err != nil {
		return
	}
	text := payload[idx+1:]

	switch {
	case command == 0 || command == 2:
		t.SetTitle(string(text))
	case command == 1:
		// Icon name: accepted, not stored.
	case command > oscButtonBase && command <= oscButtonBase+buttonCount:
		t.SetButtonLabel(command-oscButtonBase, string(text))
	}
}

// SetTitle stores the window title in the scratch config, truncated to
// the persisted field length, and fires a labels notification.
func (t *Terminal) SetTitle(title string) {
	title = truncateUTF8(title, config.TitleLen-1)
	if t.conf.Title == title {
		return
	}
	t.conf.Title = title
	t.notifyLabels()
}

// SetButtonLabel stores a button label, n in 1..5, truncated to the
// persisted field length.
func (t *Terminal) SetButtonLabel(n int, label string) {
	if n < 1 || n > buttonCount {
		return
	}
	label = truncateUTF8(label, config.ButtonLen-1)
	if t.conf.Buttons[n-1] == label {
		return
	}
	t.conf.Buttons[n-1] = label
	t.notifyLabels()
}

// truncateUTF8 cuts s to at most max bytes without splitting a
// codepoint.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && s[max]&0xc0 == 0x80 {
		max--
	}
	return s[:max]
}
