package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialScoreboard(t *testing.T, app *testApp) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(app.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebsocketInitialState(t *testing.T) {
	app := newTestApp(t)
	conn := dialScoreboard(t, app)

	msg := readWSMessage(t, conn, 5*time.Second)
	if msg["type"] != "state" {
		t.Fatalf("expected first message state, got %v", msg["type"])
	}
	if _, ok := msg["state"]; ok {
		t.Fatalf("expected no state without a game, got %v", msg["state"])
	}
	expectNoWSMessage(t, conn, 200*time.Millisecond)
}

func TestWebsocketGameUpdates(t *testing.T) {
	app := newTestApp(t)
	ts := app.ts
	createUser(t, ts, "Ava", "ava@example.com")
	b := createUser(t, ts, "Bita", "bita@example.com")

	conn := dialScoreboard(t, app)
	if messageType := readWSMessageType(t, conn, 5*time.Second); messageType != "state" {
		t.Fatalf("expected first message state, got %s", messageType)
	}

	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game", nil), http.StatusCreated)
	if messageType := readWSMessageType(t, conn, 5*time.Second); messageType != "reload" {
		t.Fatalf("expected reload after start, got %s", messageType)
	}

	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game/reveal", nil), http.StatusOK)
	msg := readWSMessage(t, conn, 5*time.Second)
	if msg["type"] != "state" {
		t.Fatalf("expected state after reveal, got %v", msg["type"])
	}
	if state, _ := msg["state"].(map[string]any); state["isCardRevealed"] != true {
		t.Fatalf("expected revealed card in pushed state, got %v", msg["state"])
	}
	waitForWSMessageTypes(t, conn, 5*time.Second, "html", "html", "html")

	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game/reactions", map[string]any{"reactions": map[string]string{b: "assertive"}}), http.StatusOK)
	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game/scores", nil), http.StatusOK)
	waitForWSMessageTypes(t, conn, 5*time.Second, "achievement_unlocked", "achievement_unlocked", "state")
}

func TestWebsocketScoreRowsFragment(t *testing.T) {
	app := newTestApp(t)
	ts := app.ts
	createUser(t, ts, "Ava", "ava@example.com")
	createUser(t, ts, "Bita", "bita@example.com")
	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game", nil), http.StatusCreated)

	conn := dialScoreboard(t, app)
	readWSMessage(t, conn, 5*time.Second)
	expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/game/reveal", nil), http.StatusOK)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg := readWSMessage(t, conn, time.Until(deadline))
		if msg["type"] != "html" || msg["selector"] != "#scoreRows" {
			continue
		}
		html, _ := msg["html"].(string)
		if !strings.Contains(html, "Ava") || !strings.Contains(html, "Bita") {
			t.Fatalf("expected both players in score rows, got %s", html)
		}
		return
	}
	t.Fatalf("timed out waiting for score rows fragment")
}

func readWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode websocket message: %v", err)
	}
	return decoded
}

func readWSMessageType(t *testing.T, conn *websocket.Conn, timeout time.Duration) string {
	t.Helper()
	messageType, _ := readWSMessage(t, conn, timeout)["type"].(string)
	return messageType
}

func expectNoWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no websocket message within %s", timeout)
	} else {
		netErr, ok := err.(net.Error)
		if !ok || !netErr.Timeout() {
			t.Fatalf("expected websocket timeout, got %v", err)
		}
	}
}

func waitForWSMessageTypes(t *testing.T, conn *websocket.Conn, timeout time.Duration, expected ...string) {
	t.Helper()
	remaining := make(map[string]int, len(expected))
	for _, typ := range expected {
		remaining[typ]++
	}
	seen := make([]string, 0, len(expected)+2)
	deadline := time.Now().Add(timeout)
	for len(remaining) > 0 {
		remainingTime := time.Until(deadline)
		if remainingTime <= 0 {
			t.Fatalf("timed out waiting for websocket messages; seen=%v, missing=%v", seen, remaining)
		}
		messageType := readWSMessageType(t, conn, remainingTime)
		seen = append(seen, messageType)
		if count, ok := remaining[messageType]; ok {
			if count <= 1 {
				delete(remaining, messageType)
			} else {
				remaining[messageType] = count - 1
			}
		}
	}
}
