// The console runs one session from a terminal. Point it at the same
// DATABASE_URL as the server so participant submissions reach it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shubh-37/idea-processor/config"
	"github.com/shubh-37/idea-processor/internal/bootstrap"
	"github.com/shubh-37/idea-processor/internal/console"
	"github.com/shubh-37/idea-processor/internal/session"
)

func main() {
	sessionID := flag.String("session", "main", "session to run")
	flag.Parse()

	cfg := config.LoadConfig()
	ev, err := config.LoadEvent(cfg.EventFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	ev.Apply(cfg)

	// The TUI owns stdout, so the log goes to a file only
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = "console.log"
	}
	logFile, err := tea.LogToFile(logPath, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Storage error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	ctl := session.New(*sessionID, st, bootstrap.NewGenerator(cfg), bootstrap.SessionOptions(cfg, ev)...)
	defer ctl.Close()
	if ev != nil && ev.DefaultContext != "" {
		ctl.SaveDefaultContext(ctx, ev.DefaultContext)
	}

	model := console.New(ctx, ctl)
	defer model.Close()

	log.Printf("🖥️ Console attached to session %s", *sessionID)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running console: %v\n", err)
		os.Exit(1)
	}
}
