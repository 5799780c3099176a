package server

import (
	"sync"
	"testing"

	"github.com/netterm/netterm/term"
)

type fakeSink struct {
	mu      sync.Mutex
	screens [][]byte
	labels  [][]byte
	bells   int
}

func (f *fakeSink) SendScreen(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screens = append(f.screens, append([]byte(nil), p...))
	return nil
}

func (f *fakeSink) SendLabels(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, append([]byte(nil), p...))
	return nil
}

func (f *fakeSink) SendBell() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bells++
	return nil
}

func (f *fakeSink) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.screens), len(f.labels), f.bells
}

func feed(s *Session, data string) {
	s.mu.Lock()
	s.term.Feed([]byte(data))
	s.mu.Unlock()
}

func TestAttachPrimesClient(t *testing.T) {
	s := NewSession(nil)
	sink := &fakeSink{}
	s.Attach(sink)

	screens, _, _ := sink.counts()
	if screens != 1 {
		t.Fatalf("expected one priming screen, got %d", screens)
	}
	snap, err := term.DecodeScreen(sink.screens[0])
	if err != nil {
		t.Fatalf("priming screen must decode: %v", err)
	}
	if snap.Rows <= 0 || snap.Cols <= 0 {
		t.Errorf("bad geometry %dx%d", snap.Rows, snap.Cols)
	}
}

func TestPublishCoalescesDirtyState(t *testing.T) {
	s := NewSession(nil)
	sink := &fakeSink{}
	s.Attach(sink)

	feed(s, "hello")
	feed(s, " world")
	feed(s, "\x1b]0;Title\x07")
	feed(s, "\x07")
	s.publish()

	screens, labels, bells := sink.counts()
	if screens != 2 { // priming + one coalesced update
		t.Errorf("screens: expected 2, got %d", screens)
	}
	if labels != 1 {
		t.Errorf("labels: expected 1, got %d", labels)
	}
	if bells != 1 {
		t.Errorf("bells: expected 1, got %d", bells)
	}

	stats := s.Stats()
	if stats.Publishes != 1 {
		t.Errorf("stats: expected one publish, got %d", stats.Publishes)
	}
	if stats.Bytes == 0 {
		t.Error("stats: published bytes should be counted")
	}

	// Nothing dirty: publish again is a no-op.
	s.publish()
	screens2, labels2, _ := sink.counts()
	if screens2 != screens || labels2 != labels {
		t.Error("publish without dirty state must not send")
	}
	if got := s.Stats().Publishes; got != 1 {
		t.Errorf("stats: idle publish must not count, got %d", got)
	}
}

func TestDetachStopsDelivery(t *testing.T) {
	s := NewSession(nil)
	sink := &fakeSink{}
	s.Attach(sink)
	s.Detach(sink)

	feed(s, "data")
	s.publish()

	screens, _, _ := sink.counts()
	if screens != 1 {
		t.Errorf("detached sink must not receive updates, got %d screens", screens)
	}
}

func TestWriteWithoutShellFails(t *testing.T) {
	s := NewSession(nil)
	if err := s.Write([]byte("x")); err == nil {
		t.Error("write without a shell should fail")
	}
}

func TestResizeChangesTerminal(t *testing.T) {
	s := NewSession(nil)
	s.Resize(5, 40)
	rows, cols := s.Size()
	if rows != 5 || cols != 40 {
		t.Errorf("size: expected 5x40, got %dx%d", rows, cols)
	}
}
