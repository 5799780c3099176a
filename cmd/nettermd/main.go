package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netterm/netterm/config"
	"github.com/netterm/netterm/server"
)

func main() {
	var (
		network  = flag.String("net", "unix", "listen network (unix or tcp)")
		addr     = flag.String("addr", "/tmp/netterm.sock", "listen address")
		confPath = flag.String("config", "netterm.conf", "persisted configuration bundle")
		dbPath   = flag.String("snapshots", "", "snapshot database path (empty disables)")
		shell    = flag.String("shell", defaultShell(), "program to host")
		logPath  = flag.String("log", "nettermd.log", "log file")
	)
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("Server starting...")

	store := config.NewStore(*confPath)
	session := server.NewSession(store)

	var snapshots *server.SnapshotStore
	if *dbPath != "" {
		snapshots, err = server.OpenSnapshotStore(*dbPath)
		if err != nil {
			log.Fatalf("open snapshot store: %v", err)
		}
		defer snapshots.Close()
	}

	if err := session.Start(*shell); err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer session.Close()

	srv := server.NewServer(*network, *addr, session)
	if err := srv.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if snapshots != nil {
		rows, cols := session.Size()
		if err := snapshots.Save(rows, cols, session.Snapshot(), session.Labels()); err != nil {
			log.Printf("snapshot save failed: %v", err)
		}
		if err := snapshots.Prune(10); err != nil {
			log.Printf("snapshot prune failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("stop: %v", err)
	}
	stats := session.Stats()
	log.Printf("Server stopped cleanly: %d publishes, %d bytes, %d slow.",
		stats.Publishes, stats.Bytes, stats.Slow)
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
