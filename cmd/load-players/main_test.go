package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bravepulse/internal/game"
)

func TestReadPlayers(t *testing.T) {
	input := strings.Join([]string{
		"first_name,last_name,email",
		"Sara, Karimi, Sara@Example.com",
		"Ali,,ali@example.com",
		",Nobody,nobody@example.com",
		"Short,row",
	}, "\n")

	players, err := readPlayers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read players: %v", err)
	}
	want := []game.User{
		{FirstName: "Sara", LastName: "Karimi", Email: "sara@example.com"},
		{FirstName: "Ali", Email: "ali@example.com"},
	}
	if diff := cmp.Diff(want, players); diff != "" {
		t.Fatalf("players mismatch (-want +got):\n%s", diff)
	}
}
