// Package app wires configuration, model provider, classifier and history
// together for the server and console binaries.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Brownie44l1/soil-api/internal/classifier"
	"github.com/Brownie44l1/soil-api/internal/config"
	"github.com/Brownie44l1/soil-api/internal/history"
	"github.com/Brownie44l1/soil-api/internal/model"
)

type App struct {
	Config     *config.Config
	Classifier *classifier.Classifier
	Recorder   history.Recorder

	provider *model.Provider
	closers  []func() error
}

// New loads the model and opens the history store. A model failure is
// returned as is so callers can report its kind and stop.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := model.InitializeRuntime(cfg.ONNX.LibraryPath); err != nil {
		return nil, err
	}
	a := &App{Config: cfg}
	a.closers = append(a.closers, func() error {
		model.DestroyRuntime()
		return nil
	})

	client := &http.Client{Timeout: cfg.DownloadTimeout()}
	a.provider = model.NewProvider(cfg.Provider(), client, model.OpenSession, logger)
	a.closers = append(a.closers, a.provider.Close)

	m, meta, err := a.provider.Provide(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Classifier = classifier.New(m, meta)

	if cfg.History.DatabaseURL != "" {
		pg, err := history.NewPostgres(ctx, cfg.History.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("history: %w", err)
		}
		a.Recorder = pg
		a.closers = append(a.closers, pg.Close)
		logger.Printf("History: postgres")
	} else {
		a.Recorder = history.NewMemory(cfg.History.Capacity)
		logger.Printf("History: in memory (last %d)", cfg.History.Capacity)
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
