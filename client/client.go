package client

import (
	"fmt"
	"net"
	"time"

	"github.com/netterm/netterm/protocol"
)

// Conn is an established connection to a terminal server.
type Conn struct {
	conn      net.Conn
	sessionID [16]byte
	rows      uint16
	cols      uint16
	sequence  uint64
}

// Connect dials the server and performs the Hello/Welcome handshake.
func Connect(network, addr, name string) (*Conn, error) {
	conn, err := net.DialTimeout(network, addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	payload, err := protocol.EncodeHello(protocol.Hello{ClientName: name})
	if err != nil {
		conn.Close()
		return nil, err
	}
	hdr := protocol.Header{Version: protocol.Version, Type: protocol.MsgHello, Flags: protocol.FlagChecksum}
	if err := protocol.WriteFrame(conn, hdr, payload); err != nil {
		conn.Close()
		return nil, err
	}

	rhdr, rpayload, err := protocol.ReadFrame(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if rhdr.Type != protocol.MsgWelcome {
		conn.Close()
		return nil, fmt.Errorf("unexpected message %v", rhdr.Type)
	}
	welcome, err := protocol.DecodeWelcome(rpayload)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Conn{
		conn:      conn,
		sessionID: welcome.SessionID,
		rows:      welcome.Rows,
		cols:      welcome.Cols,
	}, nil
}

// Size returns the server-side terminal geometry from the handshake.
func (c *Conn) Size() (rows, cols int) { return int(c.rows), int(c.cols) }

// SessionID returns the session identity assigned by the server.
func (c *Conn) SessionID() [16]byte { return c.sessionID }

// Next blocks for the next frame from the server.
func (c *Conn) Next() (protocol.Header, []byte, error) {
	return protocol.ReadFrame(c.conn)
}

func (c *Conn) send(msgType protocol.MessageType, payload []byte) error {
	c.sequence++
	hdr := protocol.Header{
		Version:   protocol.Version,
		Type:      msgType,
		Flags:     protocol.FlagChecksum,
		SessionID: c.sessionID,
		Sequence:  c.sequence,
	}
	return protocol.WriteFrame(c.conn, hdr, payload)
}

// SendInput forwards raw key bytes to the hosted program.
func (c *Conn) SendInput(data []byte) error {
	return c.send(protocol.MsgInput, data)
}

// SendResize asks the server to adopt a new geometry.
func (c *Conn) SendResize(rows, cols int) error {
	payload, err := protocol.EncodeResize(protocol.Resize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return err
	}
	return c.send(protocol.MsgResize, payload)
}

// SendPing probes the connection.
func (c *Conn) SendPing() error {
	return c.send(protocol.MsgPing, nil)
}

// Close tears down the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
