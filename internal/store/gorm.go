package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bravepulse/internal/achievements"
	"bravepulse/internal/db"
	"bravepulse/internal/game"
)

const singletonKey = "current"

// GormStore keeps users, unlocks and events in their own tables and the game state as a JSON
// column.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGorm(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

func (s *GormStore) LoadState(ctx context.Context) (*game.State, error) {
	var record db.GameState
	err := s.db.WithContext(ctx).Where(&db.GameState{Key: singletonKey}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	state := record.State.Data()
	return &state, nil
}

func (s *GormStore) SaveState(ctx context.Context, state *game.State) error {
	record := db.GameState{
		Key:       singletonKey,
		State:     datatypes.NewJSONType(*state),
		UpdatedAt: s.now(),
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *GormStore) ClearState(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&db.GameState{Key: singletonKey}).Delete(&db.GameState{}).Error; err != nil {
			return err
		}
		return tx.Where(&db.Checkpoint{Key: singletonKey}).Delete(&db.Checkpoint{}).Error
	})
}

func (s *GormStore) SaveCheckpoint(ctx context.Context, checkpoint game.Checkpoint) error {
	record := db.Checkpoint{Key: singletonKey, Route: checkpoint.Route, Timestamp: checkpoint.Timestamp}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *GormStore) Checkpoint(ctx context.Context) (*game.Checkpoint, error) {
	var record db.Checkpoint
	err := s.db.WithContext(ctx).Where(&db.Checkpoint{Key: singletonKey}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game.Checkpoint{Route: record.Route, Timestamp: record.Timestamp}, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]game.User, error) {
	var records []db.User
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]game.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.ToGame())
	}
	return users, nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (game.User, error) {
	var record db.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.User{}, ErrUserNotFound
	}
	if err != nil {
		return game.User{}, err
	}
	return record.ToGame(), nil
}

func (s *GormStore) UpsertUser(ctx context.Context, user game.User) (game.User, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return game.User{}, err
	}
	now := s.now()
	user.UpdatedAt = now
	if user.ID != "" {
		existing, err := s.GetUser(ctx, user.ID)
		switch {
		case err == nil:
			user.CreatedAt = existing.CreatedAt
			record := db.UserFromGame(user)
			if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
				return game.User{}, translateUserError(err)
			}
			return user, nil
		case !errors.Is(err, ErrUserNotFound):
			return game.User{}, err
		}
	} else {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	record := db.UserFromGame(user)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return game.User{}, translateUserError(err)
	}
	return user, nil
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&db.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) UnlockHistory(ctx context.Context) ([]achievements.UnlockedAchievement, error) {
	var records []db.UnlockedAchievement
	if err := s.db.WithContext(ctx).Order("unlocked_at asc, id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	history := make([]achievements.UnlockedAchievement, 0, len(records))
	for _, record := range records {
		history = append(history, achievements.UnlockedAchievement{
			Slug:       record.Slug,
			PlayerID:   record.PlayerKey,
			UnlockedAt: record.UnlockedAt,
			XP:         record.XP,
		})
	}
	return history, nil
}

func (s *GormStore) AppendUnlock(ctx context.Context, unlock achievements.UnlockedAchievement) error {
	record := db.UnlockedAchievement{
		Slug:       unlock.Slug,
		PlayerKey:  unlock.PlayerID,
		XP:         unlock.XP,
		UnlockedAt: unlock.UnlockedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

// RecordEvent appends an audit event. An empty playerID marks a game-wide event.
func (s *GormStore) RecordEvent(ctx context.Context, eventType string, round int, playerID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		Round:     round,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: s.now(),
	}
	if playerID != "" {
		event.PlayerID = &playerID
	}
	return s.db.WithContext(ctx).Create(&event).Error
}

// Events returns one page of audit events, newest first, with the total count.
func (s *GormStore) Events(ctx context.Context, limit, offset int) ([]db.Event, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []db.Event
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateUserError(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
