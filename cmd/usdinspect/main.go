package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/JaimeFlorian27/usdinspect/internal/config"
	"github.com/JaimeFlorian27/usdinspect/internal/logging"
	"github.com/JaimeFlorian27/usdinspect/internal/recents"
	"github.com/JaimeFlorian27/usdinspect/internal/sdf"
	"github.com/JaimeFlorian27/usdinspect/internal/sdf/hclstage"
	"github.com/JaimeFlorian27/usdinspect/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()

	stagePath, err := resolveStagePath(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	stage, err := hclstage.Open(stagePath)
	if err != nil {
		if sdf.IsNotFound(err) {
			log.Fatalf("stage not found: %s", stagePath)
		}
		log.Fatalf("open stage: %v", err)
	}
	logger.Info().Str("stage", stagePath).Msg("stage opened")

	// Recents bookkeeping is best effort. A broken database should
	// never keep the inspector from opening.
	if store, err := recents.Open(cfg.Database.Path); err == nil {
		defer store.Close()
		if err := store.Touch(ctx, stagePath, filepath.Base(stagePath)); err != nil {
			logger.Warn().Err(err).Msg("recents touch failed")
		}
		if err := store.Prune(ctx, cfg.UI.MaxRecents); err != nil {
			logger.Warn().Err(err).Msg("recents prune failed")
		}
	} else {
		logger.Warn().Err(err).Msg("recents store unavailable")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("file watching disabled")
		watcher = nil
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(stagePath)); err != nil {
			logger.Warn().Err(err).Str("dir", filepath.Dir(stagePath)).Msg("watch failed")
		}
	}

	reopen := func() (sdf.Stage, error) { return hclstage.Open(stagePath) }

	app := tui.New(cfg, logger, stagePath, stage, reopen, watcher)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// resolveStagePath takes the stage file from argv, falling back to the
// most recently opened one.
func resolveStagePath(ctx context.Context, cfg config.Config) (string, error) {
	if len(os.Args) > 1 {
		return filepath.Abs(os.Args[1])
	}
	store, err := recents.Open(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("usage: usdinspect <stage.hcl>")
	}
	defer store.Close()
	entries, err := store.List(ctx, 1)
	if err != nil || len(entries) == 0 {
		return "", fmt.Errorf("usage: usdinspect <stage.hcl>")
	}
	return entries[0].Path, nil
}
