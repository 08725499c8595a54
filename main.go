package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/config"
	"github.com/sadopc/storeflow/internal/prefs"
	"github.com/sadopc/storeflow/internal/session"
	"github.com/sadopc/storeflow/internal/store"
	"github.com/sadopc/storeflow/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug {
		f, err := tea.LogToFile("storeflow-debug.log", "debug")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	gw := api.New(cfg.API.BaseURL, cfg.API.Timeout)

	sess := session.New(gw, s)
	if err := sess.Restore(); err != nil {
		fmt.Fprintf(os.Stderr, "error restoring session: %v\n", err)
		os.Exit(1)
	}

	ps, err := prefs.NewStore(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading preferences: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(sess, gw, ps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
