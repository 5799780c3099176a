package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/netterm/netterm/client"
	"github.com/netterm/netterm/protocol"
	termcore "github.com/netterm/netterm/term"
)

func main() {
	var (
		network = flag.String("net", "unix", "server network (unix or tcp)")
		addr    = flag.String("addr", "/tmp/netterm.sock", "server address")
		logPath = flag.String("log", "netterm.log", "log file")
	)
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "netterm: stdin is not a terminal")
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netterm: open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	conn, err := client.Connect(*network, *addr, "netterm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "netterm: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "netterm: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "netterm: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	updates := make(chan *termcore.Snapshot, 4)
	bells := make(chan struct{}, 1)
	go readLoop(conn, updates, bells, screen)

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			client.RenderSnapshot(screen, snap)
			screen.Show()
		case <-bells:
			screen.Beep()
		}
	}
}

// readLoop turns server frames into render updates. Key input is pumped
// from tcell in a separate goroutine started before the first frame is
// read.
func readLoop(conn *client.Conn, updates chan<- *termcore.Snapshot, bells chan<- struct{}, screen tcell.Screen) {
	defer close(updates)

	go inputLoop(conn, screen)

	for {
		hdr, payload, err := conn.Next()
		if err != nil {
			log.Printf("Client: Connection lost: %v", err)
			return
		}
		switch hdr.Type {
		case protocol.MsgScreenUpdate:
			snap, err := termcore.DecodeScreen(payload)
			if err != nil {
				log.Printf("Client: Bad screen update: %v", err)
				continue
			}
			updates <- snap
		case protocol.MsgLabelsUpdate:
			title, _ := client.Labels(payload)
			screen.SetTitle(title)
		case protocol.MsgBell:
			select {
			case bells <- struct{}{}:
			default:
			}
		}
	}
}

func inputLoop(conn *client.Conn, screen tcell.Screen) {
	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if b := keyBytes(ev); len(b) > 0 {
				if err := conn.SendInput(b); err != nil {
					return
				}
			}
		case *tcell.EventResize:
			cols, rows := ev.Size()
			_ = conn.SendResize(rows, cols)
		case nil:
			return
		}
	}
}

// keyBytes maps a tcell key event to the byte sequence a terminal would
// send.
func keyBytes(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyEscape:
		return []byte{0x1b}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyHome:
		return []byte("\x1b[H")
	case tcell.KeyEnd:
		return []byte("\x1b[F")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyCtrlC:
		return []byte{0x03}
	case tcell.KeyCtrlD:
		return []byte{0x04}
	case tcell.KeyCtrlZ:
		return []byte{0x1a}
	case tcell.KeyCtrlL:
		return []byte{0x0c}
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		return []byte{byte(ev.Key())}
	}
	return nil
}
