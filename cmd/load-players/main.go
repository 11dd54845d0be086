package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"bravepulse/internal/config"
	"bravepulse/internal/game"
	"bravepulse/internal/store"
)

func main() {
	filePath := flag.String("file", "players.csv", "path to players csv (first_name,last_name,email)")
	flag.Parse()

	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	backend, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("failed to open players: %v", err)
	}
	defer file.Close()
	players, err := readPlayers(file)
	if err != nil {
		log.Fatalf("failed to read players: %v", err)
	}

	ctx := context.Background()
	existing, err := backend.ListUsers(ctx)
	if err != nil {
		log.Fatalf("failed to list users: %v", err)
	}
	byEmail := make(map[string]string, len(existing))
	for _, user := range existing {
		byEmail[user.Email] = user.ID
	}

	loaded := 0
	for _, player := range players {
		player.ID = byEmail[player.Email]
		user, err := backend.UpsertUser(ctx, player)
		if err != nil {
			log.Fatalf("failed to upsert player email=%s: %v", player.Email, err)
		}
		byEmail[user.Email] = user.ID
		loaded++
	}
	if err := backend.Close(); err != nil {
		log.Printf("store close failed: %v", err)
	}
	log.Printf("loaded %d players", loaded)
}

// readPlayers parses first_name,last_name,email rows. A header row and rows without a first
// name or email are skipped.
func readPlayers(r io.Reader) ([]game.User, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var players []game.User
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		first := strings.TrimSpace(row[0])
		last := strings.TrimSpace(row[1])
		email := strings.ToLower(strings.TrimSpace(row[2]))
		if i == 0 && strings.EqualFold(first, "first_name") {
			continue
		}
		if first == "" || email == "" {
			continue
		}
		players = append(players, game.User{FirstName: first, LastName: last, Email: email})
	}
	return players, nil
}
