package server

import (
	"context"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/netterm/netterm/protocol"
)

// Server accepts display clients on a socket and attaches them to the
// hosted session.
type Server struct {
	network  string
	addr     string
	session  *Session
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server for "unix" or "tcp" addresses.
func NewServer(network, addr string, session *Session) *Server {
	return &Server{network: network, addr: addr, session: session, quit: make(chan struct{})}
}

func (s *Server) Start() error {
	if s.network == "unix" {
		if err := os.RemoveAll(s.addr); err != nil {
			return err
		}
	}
	l, err := net.Listen(s.network, s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			if strings.Contains(err.Error(), "use of closed") {
				return
			}
			continue
		}
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(c)
		}(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	hdr, payload, err := protocol.ReadFrame(conn)
	if err != nil || hdr.Type != protocol.MsgHello {
		log.Printf("Server: Handshake failed: %v", err)
		return
	}
	hello, err := protocol.DecodeHello(payload)
	if err != nil {
		return
	}
	log.Printf("Server: Client %q connected", hello.ClientName)

	rows, cols := s.session.Size()
	welcome, err := protocol.EncodeWelcome(protocol.Welcome{
		SessionID: s.session.ID(),
		Rows:      uint16(rows),
		Cols:      uint16(cols),
	})
	if err != nil {
		return
	}
	client := newClientConn(conn, s.session.ID())
	if err := client.send(protocol.MsgWelcome, welcome); err != nil {
		return
	}

	s.session.Attach(client)
	defer s.session.Detach(client)

	for {
		hdr, payload, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}
		switch hdr.Type {
		case protocol.MsgInput:
			if err := s.session.Write(payload); err != nil {
				return
			}
		case protocol.MsgResize:
			r, err := protocol.DecodeResize(payload)
			if err == nil {
				s.session.Resize(int(r.Rows), int(r.Cols))
			}
		case protocol.MsgPing:
			if err := client.send(protocol.MsgPong, nil); err != nil {
				return
			}
		default:
			// Unknown message types are skipped; the frame length has
			// already been consumed.
		}
	}
}

func (s *Server) Stop(ctx context.Context) error {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// clientConn adapts a network connection to the UpdateSink interface.
// Writes are serialized by a mutex so the session publisher and the
// pong path do not interleave frames.
type clientConn struct {
	mu        sync.Mutex
	conn      net.Conn
	sessionID [16]byte
	sequence  uint64
}

func newClientConn(conn net.Conn, sessionID [16]byte) *clientConn {
	return &clientConn{conn: conn, sessionID: sessionID}
}

func (c *clientConn) send(msgType protocol.MessageType, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
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

func (c *clientConn) SendScreen(payload []byte) error {
	return c.send(protocol.MsgScreenUpdate, payload)
}

func (c *clientConn) SendLabels(payload []byte) error {
	return c.send(protocol.MsgLabelsUpdate, payload)
}

func (c *clientConn) SendBell() error {
	return c.send(protocol.MsgBell, nil)
}
