package protocol

import (
	"encoding/binary"
	"errors"
)

var errPayloadShort = errors.New("protocol: payload too short")

// Hello is sent by a client immediately after connecting.
type Hello struct {
	ClientName string
}

// Welcome is the server's reply: the session identity and the current
// screen geometry, so the client can size its window before the first
// screen update arrives.
type Welcome struct {
	SessionID [16]byte
	Rows      uint16
	Cols      uint16
}

// Input carries raw key bytes from the client to the hosted program.
type Input struct {
	Data []byte
}

// Resize asks the server to change the terminal geometry.
type Resize struct {
	Rows uint16
	Cols uint16
}

func EncodeHello(h Hello) ([]byte, error) {
	name := []byte(h.ClientName)
	if len(name) > 0xff {
		name = name[:0xff]
	}
	buf := make([]byte, 1+len(name))
	buf[0] = byte(len(name))
	copy(buf[1:], name)
	return buf, nil
}

func DecodeHello(b []byte) (Hello, error) {
	var h Hello
	if len(b) < 1 {
		return h, errPayloadShort
	}
	n := int(b[0])
	if len(b) < 1+n {
		return h, errPayloadShort
	}
	h.ClientName = string(b[1 : 1+n])
	return h, nil
}

func EncodeWelcome(w Welcome) ([]byte, error) {
	buf := make([]byte, 20)
	copy(buf[:16], w.SessionID[:])
	binary.LittleEndian.PutUint16(buf[16:18], w.Rows)
	binary.LittleEndian.PutUint16(buf[18:20], w.Cols)
	return buf, nil
}

func DecodeWelcome(b []byte) (Welcome, error) {
	var w Welcome
	if len(b) < 20 {
		return w, errPayloadShort
	}
	copy(w.SessionID[:], b[:16])
	w.Rows = binary.LittleEndian.Uint16(b[16:18])
	w.Cols = binary.LittleEndian.Uint16(b[18:20])
	return w, nil
}

func EncodeResize(r Resize) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], r.Rows)
	binary.LittleEndian.PutUint16(buf[2:4], r.Cols)
	return buf, nil
}

func DecodeResize(b []byte) (Resize, error) {
	var r Resize
	if len(b) < 4 {
		return r, errPayloadShort
	}
	r.Rows = binary.LittleEndian.Uint16(b[0:2])
	r.Cols = binary.LittleEndian.Uint16(b[2:4])
	return r, nil
}
