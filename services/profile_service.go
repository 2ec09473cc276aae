package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
)

type Profile struct {
	User  *models.User       `json:"user"`
	Stats models.PlayerStats `json:"stats"`
}

type CreateGameAccountInput struct {
	GameName string  `json:"game_name" validate:"omitempty,max=60"`
	InGameID string  `json:"in_game_id" validate:"required,max=64"`
	Nickname *string `json:"nickname" validate:"omitempty,max=40"`
}

const defaultGameName = "Universal"

// ProfileService covers the signed-in player's own account: profile, avatar and game accounts.
type ProfileService struct {
	store store.Store
	blobs BlobStore
	log   *logger.Logger
	now   func() time.Time
}

func NewProfileService(st store.Store, blobs BlobStore, log *logger.Logger) *ProfileService {
	return &ProfileService{store: st, blobs: blobs, log: log.With("component", "profile"), now: time.Now}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Stats: stats}, nil
}

// Stats counts registrations as matches and first places as wins.
func (s *ProfileService) Stats(ctx context.Context, userID string) (models.PlayerStats, error) {
	matches, err := s.store.CountRegistrations(ctx, store.RegistrationFilter{UserID: userID})
	if err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to count matches: %w", err)
	}
	totals, err := s.store.ResultTotals(ctx, userID)
	if err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to load results: %w", err)
	}
	return models.PlayerStats{
		Matches:  matches,
		Wins:     totals.Wins,
		Earnings: totals.Earnings,
		WinRate:  winRate(totals.Wins, matches),
	}, nil
}

func winRate(wins, matches int64) int {
	if matches == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(matches) * 100))
}

func (s *ProfileService) SetUsername(ctx context.Context, userID, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 24 {
		return nil, fmt.Errorf("%w: username must be 3-24 characters", ErrInvalidInput)
	}
	if err := s.store.SetUsername(ctx, userID, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	return s.user(ctx, userID)
}

// UploadAvatar stores the image and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, img Upload) (*models.User, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("avatar uploads are not configured")
	}
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	url, err := s.blobs.Upload(ctx, avatarKey(userID, s.now(), img.Filename), img.ContentType, img.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.store.SetAvatarURL(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}
	s.log.Info("🖼️ [PROFILE] avatar updated", "user_id", userID)
	return s.user(ctx, userID)
}

func (s *ProfileService) GameAccounts(ctx context.Context, userID string) ([]models.GameAccount, error) {
	out, err := s.store.ListGameAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game accounts: %w", err)
	}
	return out, nil
}

func (s *ProfileService) AddGameAccount(ctx context.Context, userID string, in CreateGameAccountInput) (*models.GameAccount, error) {
	inGameID := strings.TrimSpace(in.InGameID)
	if inGameID == "" {
		return nil, fmt.Errorf("%w: in_game_id is required", ErrInvalidInput)
	}
	game := strings.TrimSpace(in.GameName)
	if game == "" {
		game = defaultGameName
	}
	acc := &models.GameAccount{
		ID:       uuid.NewString(),
		UserID:   userID,
		GameName: game,
		InGameID: inGameID,
		Nickname: in.Nickname,
	}
	if err := s.store.CreateGameAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create game account: %w", err)
	}
	return acc, nil
}

func (s *ProfileService) RemoveGameAccount(ctx context.Context, userID, accountID string) error {
	if err := s.store.DeleteGameAccount(ctx, userID, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGameAccountNotFound
		}
		return fmt.Errorf("failed to delete game account: %w", err)
	}
	return nil
}

func (s *ProfileService) user(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}
