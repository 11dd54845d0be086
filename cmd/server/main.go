package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"bravepulse/internal/achievements"
	"bravepulse/internal/cards"
	"bravepulse/internal/config"
	"bravepulse/internal/game"
	"bravepulse/internal/reporter"
	"bravepulse/internal/server"
	"bravepulse/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	backend, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}

	catalog := cards.NewCatalog(cfg.CardsDir)
	if err := catalog.Preload(ctx); err != nil {
		log.Fatalf("card catalog failed: %v", err)
	}

	manager := game.NewManager(backend, catalog, game.Settings{
		MaxRounds: cfg.MaxRounds,
		Language:  catalog.Resolve(cfg.DefaultLanguage),
	})
	if state, err := manager.Resume(ctx); err == nil {
		log.Printf("game resumed round=%d players=%d", state.CurrentRound, len(state.Players))
	} else if !errors.Is(err, game.ErrNoActiveGame) {
		log.Printf("game resume failed error=%v", err)
	}

	hub := server.NewHub()
	notifiers := []achievements.Notifier{hub}
	var scores server.ScoreReporter
	if cfg.ReporterEnabled() {
		client := reporter.New(reporter.Settings{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.GameAPIKey,
			GameSlug:  cfg.GameSlug,
			MaxRounds: cfg.MaxRounds,
			Timeout:   cfg.BackendTimeout(),
		}, backend, catalog)
		notifiers = append(notifiers, client)
		scores = client
		log.Printf("remote score reporting enabled backend=%s game=%s", cfg.BackendURL, cfg.GameSlug)
	}

	srv := server.New(cfg, server.Deps{
		Store:        backend,
		Cards:        catalog,
		Manager:      manager,
		Achievements: achievements.NewEngine(backend, backend, notifiers...),
		Hub:          hub,
		Reporter:     scores,
	})

	addr := ":" + cfg.Port
	log.Printf("bravepulse server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
