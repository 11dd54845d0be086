package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bravepulse/internal/achievements"
	"bravepulse/internal/game"
)

const apiKeyHeader = "X-Game-API-Key"

var (
	ErrNoFinalScores = errors.New("no scores found for final round")
	ErrUserNotScored = errors.New("user score not found in final round")
)

// APIError is a non-2xx answer from the game backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("game backend request failed (%d)", e.Status)
}

type UserLister interface {
	ListUsers(ctx context.Context) ([]game.User, error)
}

type CardSource interface {
	Cards(ctx context.Context, language string) ([]game.SituationCard, error)
}

type Settings struct {
	BaseURL   string
	APIKey    string
	GameSlug  string
	MaxRounds int
	Timeout   time.Duration
}

// Client pushes per-user score rows and achievement unlocks to the remote game backend.
type Client struct {
	settings Settings
	http     *http.Client
	users    UserLister
	cards    CardSource

	mu       sync.Mutex
	scoreIDs map[string]string
}

func New(settings Settings, users UserLister, cards CardSource) *Client {
	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &Client{
		settings: settings,
		http:     &http.Client{Timeout: settings.Timeout},
		users:    users,
		cards:    cards,
		scoreIDs: make(map[string]string),
	}
}

type scoreData struct {
	SelfRespect        int `json:"selfRespect"`
	RelationshipHealth int `json:"relationshipHealth"`
	GoalAchievement    int `json:"goalAchievement"`
	Team               int `json:"team"`
}

type createScoreRequest struct {
	Email     string         `json:"email"`
	ScoreData scoreData      `json:"score_data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type updateScoreRequest struct {
	ScoreData scoreData `json:"score_data"`
	Metadata  Metadata  `json:"metadata"`
}

type createScoreResponse struct {
	Data *struct {
		ID     string `json:"id"`
		GameID string `json:"game_id"`
	} `json:"data"`
}

// CreateScore opens a score row for user at the starting KPIs and returns its id.
func (c *Client) CreateScore(ctx context.Context, user game.User, userCount int) (string, error) {
	body := createScoreRequest{
		Email: user.Email,
		ScoreData: scoreData{
			SelfRespect:        game.DefaultKPI,
			RelationshipHealth: game.DefaultKPI,
			GoalAchievement:    game.DefaultKPI,
			Team:               userCount * game.TeamScorePerPlayer,
		},
		Metadata: map[string]any{
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"createdAt": user.CreatedAt,
		},
	}
	var parsed createScoreResponse
	if err := c.do(ctx, http.MethodPost, c.gamePath("scores"), body, &parsed); err != nil {
		return "", err
	}
	if parsed.Data == nil || parsed.Data.ID == "" {
		return "", errors.New("unexpected score response structure")
	}
	c.mu.Lock()
	c.scoreIDs[user.ID] = parsed.Data.ID
	c.mu.Unlock()
	log.Printf("remote score created user_id=%s score_id=%s game_id=%s", user.ID, parsed.Data.ID, parsed.Data.GameID)
	return parsed.Data.ID, nil
}

// StartGame opens a score row for every player. Failures are collected, not fatal.
func (c *Client) StartGame(ctx context.Context, players []game.User) error {
	var errs []error
	for _, user := range players {
		if _, err := c.CreateScore(ctx, user, len(players)); err != nil {
			log.Printf("remote score create failed user_id=%s error=%v", user.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", user.ID, err))
		}
	}
	return errors.Join(errs...)
}

// UpdateScore writes the user's final KPIs and the game metadata. A user without a score row
// gets one first.
func (c *Client) UpdateScore(ctx context.Context, user game.User, state *game.State) error {
	latest := state.LatestScores()
	if latest == nil {
		return ErrNoFinalScores
	}
	scores, ok := latest.ScoresOf(user.ID)
	if !ok {
		return ErrUserNotScored
	}

	scoreID, err := c.scoreID(ctx, user)
	if err != nil {
		return err
	}
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	cards, err := c.cards.Cards(ctx, state.Language)
	if err != nil {
		return err
	}

	body := updateScoreRequest{
		ScoreData: scoreData{
			SelfRespect:        scores.SelfRespect,
			RelationshipHealth: scores.RelationshipHealth,
			GoalAchievement:    scores.GoalAchievement,
			Team:               latest.TeamScore,
		},
		Metadata: BuildMetadata(state, users, cards, c.settings.MaxRounds),
	}
	return c.do(ctx, http.MethodPut, c.gamePath("scores", scoreID), body, nil)
}

// FinishGame updates the score row of every player in state.
func (c *Client) FinishGame(ctx context.Context, state *game.State) error {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]game.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	var errs []error
	for _, playerID := range state.Players {
		user, ok := byID[playerID]
		if !ok {
			log.Printf("remote score update skipped player_id=%s reason=unknown_user", playerID)
			continue
		}
		if err := c.UpdateScore(ctx, user, state); err != nil {
			log.Printf("remote score update failed user_id=%s error=%v", user.ID, err)
			errs = append(errs, fmt.Errorf("%s: %w", user.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) UnlockAchievement(ctx context.Context, slug, email string) error {
	return c.do(ctx, http.MethodPost, c.gamePath("achievements", slug, "unlock"), map[string]string{"email": email}, nil)
}

// AchievementUnlocked reports an unlock. Team unlocks are sent for every user and succeed when
// at least one request does.
func (c *Client) AchievementUnlocked(ctx context.Context, achievement achievements.Achievement, playerID string) error {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	if playerID != "" {
		for _, user := range users {
			if user.ID == playerID {
				return c.UnlockAchievement(ctx, achievement.Slug, user.Email)
			}
		}
		return fmt.Errorf("user not found: %s", playerID)
	}

	var firstErr error
	delivered := 0
	for _, user := range users {
		if err := c.UnlockAchievement(ctx, achievement.Slug, user.Email); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delivered++
	}
	if delivered == 0 && firstErr != nil {
		return firstErr
	}
	return nil
}

func (c *Client) scoreID(ctx context.Context, user game.User) (string, error) {
	c.mu.Lock()
	id, ok := c.scoreIDs[user.ID]
	c.mu.Unlock()
	if ok {
		return id, nil
	}
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	return c.CreateScore(ctx, user, len(users))
}

func (c *Client) gamePath(parts ...string) string {
	escaped := make([]string, 0, len(parts)+3)
	escaped = append(escaped, "v1", "games", url.PathEscape(c.settings.GameSlug))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return c.settings.BaseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to build game backend request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build game backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.settings.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach game backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read game backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse game backend response: %w", err)
	}
	return nil
}
