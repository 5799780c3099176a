// Copyright © 2025 Netterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/codec_test.go
// Summary: Binary bundle layout tests.

package config

import (
	"bytes"
	"testing"
)

func TestMarshalSize(t *testing.T) {
	data, err := Defaults().MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != BundleSize {
		t.Fatalf("size: expected %d, got %d", BundleSize, len(data))
	}
}

func TestRoundTrip(t *testing.T) {
	b := Bundle{
		Width:            80,
		Height:           25,
		DefaultBG:        4,
		DefaultFG:        15,
		Title:            "my terminal",
		Buttons:          [ButtonCount]string{"one", "two", "three", "four", "five"},
		Theme:            3,
		ParserTimeoutMS:  123,
		DisplayTimeoutMS: 456,
		FnAltMode:        true,
	}
	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Bundle
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if got != b {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, b)
	}
}

func TestFieldOffsetsAreStable(t *testing.T) {
	b := Defaults()
	b.Width = 0x11223344
	b.Title = "T"
	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data[0:4], []byte{0x44, 0x33, 0x22, 0x11}) {
		t.Error("width must be little-endian at offset 0")
	}
	if data[10] != 'T' || data[11] != 0 {
		t.Error("title must start at offset 10, NUL-terminated")
	}
	if data[133] != 0 {
		t.Error("fn_alt_mode must sit at offset 133")
	}
}

func TestOverlongStringsTruncate(t *testing.T) {
	b := Defaults()
	b.Title = string(bytes.Repeat([]byte("x"), 200))
	b.Buttons[0] = "0123456789ABC"
	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Bundle
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if len(got.Title) != TitleLen-1 {
		t.Errorf("title: expected %d bytes, got %d", TitleLen-1, len(got.Title))
	}
	if len(got.Buttons[0]) != ButtonLen-1 {
		t.Errorf("button: expected %d bytes, got %d", ButtonLen-1, len(got.Buttons[0]))
	}
}

func TestUnmarshalRejectsWrongSize(t *testing.T) {
	var b Bundle
	if err := b.UnmarshalBinary(make([]byte, 100)); err != ErrBadSize {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
}
