package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	return doRequestWithHeaders(t, ts, method, path, payload, nil)
}

func doRequestWithHeaders(t *testing.T, ts *httptest.Server, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, readBody(t, resp))
	}
}

func createUser(t *testing.T, ts *httptest.Server, firstName, email string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{
		"firstName": firstName,
		"email":     email,
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	id, ok := body["id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected user id, got %#v", body["id"])
	}
	return id
}

func gameState(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	state, ok := body["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state object, got %#v", body["state"])
	}
	return state
}

func unlockKeys(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["unlocked"].([]any)
	if !ok {
		t.Fatalf("expected unlocked list, got %#v", body["unlocked"])
	}
	keys := make([]string, 0, len(raw))
	for _, item := range raw {
		entry := item.(map[string]any)
		player, _ := entry["playerId"].(string)
		keys = append(keys, entry["slug"].(string)+"/"+player)
	}
	return keys
}
