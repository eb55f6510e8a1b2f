package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tbryant/tickboard/internal/config"
	"github.com/tbryant/tickboard/internal/gateway"
	"github.com/tbryant/tickboard/internal/logging"
	"github.com/tbryant/tickboard/internal/store"
	"github.com/tbryant/tickboard/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("tickboard %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.Info().Str("version", version).Str("api_url", cfg.APIURL).Msg("starting")

	ctx := context.Background()
	gw := gateway.NewHTTPClient(cfg.APIURL, cfg.AuthToken, cfg.Timeout)
	st := store.New(gw, log)

	// Create and run the application
	app := ui.NewApp(ctx, st)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Redraw whenever the store changes under us
	cancel := st.Subscribe(func() {
		p.Send(ui.StoreChangedMsg{})
	})
	defer cancel()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
