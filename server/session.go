package server

import (
	"crypto/rand"
	"errors"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/netterm/netterm/config"
	"github.com/netterm/netterm/term"
)

var ErrSessionClosed = errors.New("server: session closed")

// UpdateSink receives serialized state pushed by a session. Implemented
// by connected clients; sends must not block the session for long.
type UpdateSink interface {
	SendScreen(payload []byte) error
	SendLabels(payload []byte) error
	SendBell() error
}

// Session hosts one shell on a PTY and owns the terminal core fed by its
// output. All terminal access is serialized through the session mutex.
type Session struct {
	id    [16]byte
	store *config.Store

	mu   sync.Mutex
	term *term.Terminal
	ptmx *os.File
	cmd  *exec.Cmd

	sinks map[UpdateSink]struct{}

	contentDirty bool
	labelsDirty  bool
	bellPending  bool
	kick         chan struct{}

	stats PublishStats

	closed bool
	done   chan struct{}
}

// PublishStats counts the broadcast work a session has done. Slow is
// the number of publishes that took longer than the display timeout,
// i.e. broadcasts that could not keep up with the coalescing window.
type PublishStats struct {
	Publishes int
	Bytes     int
	Slow      int
}

// Stats returns a copy of the broadcast counters.
func (s *Session) Stats() PublishStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// NewSession loads the persisted configuration and builds the terminal
// core. The shell is not started until Start.
func NewSession(store *config.Store) *Session {
	s := &Session{
		store: store,
		sinks: make(map[UpdateSink]struct{}),
		kick:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	if _, err := rand.Read(s.id[:]); err != nil {
		log.Printf("Session: Failed to generate id: %v", err)
	}

	base := config.Defaults()
	if store != nil {
		base = store.Load()
	}
	s.term = term.New(base,
		term.WithEmitter(s.writePty),
		term.WithNotifier(s.onChange),
		term.WithBell(s.onBell),
	)
	return s
}

// ID returns the session identity used in protocol frames.
func (s *Session) ID() [16]byte { return s.id }

// Size returns the current terminal geometry.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.Size()
}

// Start launches the shell on a PTY sized to the terminal and begins
// pumping its output through the parser.
func (s *Session) Start(shell string) error {
	rows, cols := s.Size()
	cmd := exec.Command(shell)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows), Cols: uint16(cols),
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cmd = cmd
	s.ptmx = ptmx
	s.mu.Unlock()

	go s.readLoop()
	go s.publishLoop()
	return nil
}

// readLoop feeds PTY output into the terminal core.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.term.Feed(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			log.Printf("Session: PTY closed: %v", err)
			s.Close()
			return
		}
	}
}

// publishLoop coalesces change notifications: after the first dirty mark
// it waits out the display timeout, then serializes once and broadcasts.
func (s *Session) publishLoop() {
	timeout := s.displayTimeout()
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
		}
		time.Sleep(timeout)
		s.publish()
	}
}

func (s *Session) displayTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.term.Baseline().DisplayTimeoutMS
	if ms == 0 {
		ms = config.DefDisplayTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// onChange runs inside Feed, on the session goroutine with the mutex
// held: it only marks state and pokes the publisher.
func (s *Session) onChange(topic term.ChangeTopic) {
	switch topic {
	case term.TopicContent:
		s.contentDirty = true
	case term.TopicLabels:
		s.labelsDirty = true
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// onBell runs inside Feed like onChange; the bell is delivered on the
// next publish.
func (s *Session) onBell() {
	s.bellPending = true
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// writePty queues DSR/DA replies back to the hosted program.
func (s *Session) writePty(b []byte) {
	if s.ptmx == nil {
		return
	}
	if _, err := s.ptmx.Write(b); err != nil {
		log.Printf("Session: Reply write failed: %v", err)
	}
}

func (s *Session) sinkList() []UpdateSink {
	out := make([]UpdateSink, 0, len(s.sinks))
	for sink := range s.sinks {
		out = append(out, sink)
	}
	return out
}

// publish serializes pending state and fans it out to all sinks.
func (s *Session) publish() {
	start := time.Now()
	s.mu.Lock()
	content, labels, bell := s.contentDirty, s.labelsDirty, s.bellPending
	s.contentDirty, s.labelsDirty, s.bellPending = false, false, false

	var screen, labelBuf []byte
	if content {
		screen = s.serializeScreenLocked()
	}
	if labels {
		buf := make([]byte, config.TitleLen+config.ButtonCount*(config.ButtonLen+1))
		n := s.term.SerializeLabels(buf)
		labelBuf = buf[:n]
	}
	sinks := s.sinkList()
	s.mu.Unlock()

	for _, sink := range sinks {
		if screen != nil {
			if err := sink.SendScreen(screen); err != nil {
				s.Detach(sink)
				continue
			}
		}
		if labelBuf != nil {
			if err := sink.SendLabels(labelBuf); err != nil {
				s.Detach(sink)
				continue
			}
		}
		if bell {
			if err := sink.SendBell(); err != nil {
				s.Detach(sink)
			}
		}
	}

	if !content && !labels && !bell {
		return
	}
	elapsed := time.Since(start)
	slow := elapsed > s.displayTimeout()
	s.mu.Lock()
	s.stats.Publishes++
	s.stats.Bytes += len(screen) + len(labelBuf)
	if slow {
		s.stats.Slow++
	}
	s.mu.Unlock()
	if slow {
		log.Printf("Session: Publish lagged the display timeout (%s, %d bytes)",
			elapsed, len(screen)+len(labelBuf))
	}
}

func (s *Session) serializeScreenLocked() []byte {
	var cur term.ScreenCursor
	out := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, done := s.term.SerializeScreen(chunk, &cur)
		out = append(out, chunk[:n]...)
		if done {
			return out
		}
		if n == 0 {
			// A token larger than the chunk cannot happen; bail out
			// rather than spin.
			return out
		}
	}
}

// Snapshot serializes the current screen for a newly attached client or
// the snapshot store.
func (s *Session) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serializeScreenLocked()
}

// Labels serializes the current title and button labels.
func (s *Session) Labels() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, config.TitleLen+config.ButtonCount*(config.ButtonLen+1))
	n := s.term.SerializeLabels(buf)
	return buf[:n]
}

// Attach registers a sink and primes it with the current screen state.
func (s *Session) Attach(sink UpdateSink) {
	s.mu.Lock()
	s.sinks[sink] = struct{}{}
	screen := s.serializeScreenLocked()
	s.mu.Unlock()
	if err := sink.SendScreen(screen); err != nil {
		s.Detach(sink)
	}
}

// Detach removes a sink.
func (s *Session) Detach(sink UpdateSink) {
	s.mu.Lock()
	delete(s.sinks, sink)
	s.mu.Unlock()
}

// Write forwards client key input to the hosted program.
func (s *Session) Write(data []byte) error {
	s.mu.Lock()
	ptmx := s.ptmx
	closed := s.closed
	s.mu.Unlock()
	if closed || ptmx == nil {
		return ErrSessionClosed
	}
	_, err := ptmx.Write(data)
	return err
}

// Resize changes the terminal geometry and propagates it to the PTY.
func (s *Session) Resize(rows, cols int) {
	s.mu.Lock()
	s.term.Resize(rows, cols)
	rows, cols = s.term.Size()
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx != nil {
		if err := pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
			log.Printf("Session: Setsize failed: %v", err)
		}
	}
}

// RestoreDefaults resets the terminal to factory configuration and
// persists the new baseline.
func (s *Session) RestoreDefaults() error {
	s.mu.Lock()
	s.term.RestoreDefaults()
	base := s.term.Baseline()
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Save(base)
}

// Close terminates the shell and stops the pumps.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ptmx, cmd := s.ptmx, s.cmd
	s.mu.Unlock()

	close(s.done)
	if ptmx != nil {
		_ = ptmx.Close()
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}
