package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TournamentStatusUpcoming  = "upcoming"
	TournamentStatusLive      = "live"
	TournamentStatusCompleted = "completed"
)

// DefaultMaxPlayers applies when a tournament is created without a capacity.
const DefaultMaxPlayers = 100

// PrizeSlot is one row of a tournament's position prize table.
type PrizeSlot struct {
	Position int   `json:"position"`
	Amount   int64 `json:"amount"`
}

// Tournament is a scheduled competitive event with an entry fee and a roster capacity.
type Tournament struct {
	ID                 string                         `json:"id" gorm:"primaryKey;type:uuid"`
	Title              string                         `json:"title" gorm:"not null"`
	Game               string                         `json:"game" gorm:"not null;index"` // free-text game name
	Mode               string                         `json:"mode"`
	Map                string                         `json:"map"`
	Region             string                         `json:"region"`
	Status             string                         `json:"status" gorm:"type:varchar(16);default:'upcoming';index"`
	EntryFee           int64                          `json:"entry_fee" gorm:"not null;default:0"`
	PrizePool          int64                          `json:"prize_pool" gorm:"not null;default:0"`
	PerKillCoins       int64                          `json:"per_kill_coins" gorm:"default:0"`
	PrizeDistribution  datatypes.JSONSlice[PrizeSlot] `json:"prize_distribution" gorm:"type:jsonb"`
	Description        string                         `json:"description" gorm:"type:text"`
	Rules              string                         `json:"rules" gorm:"type:text"`
	StartTime          time.Time                      `json:"start_time" gorm:"not null;index"`
	RegistrationEndsAt *time.Time                     `json:"registration_ends_at,omitempty"`
	RoomID             string                         `json:"room_id,omitempty"`
	RoomPassword       string                         `json:"room_password,omitempty"`
	BannerURL          string                         `json:"banner_url,omitempty"`
	ThumbnailURL       string                         `json:"thumbnail_url,omitempty"`
	MaxPlayers         int                            `json:"max_players" gorm:"not null;default:100"`
	CurrentPlayers     int                            `json:"current_players" gorm:"not null;default:0"`
	Timestamps

	// Calculated fields (not stored in DB)
	TotalPrize int64 `json:"total_prize" gorm:"-"`
}

// IsFull reports whether the roster has no free slot left.
func (t *Tournament) IsFull() bool {
	return t.CurrentPlayers >= t.MaxPlayers
}

// TournamentRegistration binds one user to one tournament. (tournament_id, user_id) is unique.
type TournamentRegistration struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	TournamentID  string    `json:"tournament_id" gorm:"type:uuid;not null;uniqueIndex:idx_registration_tournament_user"`
	UserID        string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_registration_tournament_user;index"`
	GameAccountID *string   `json:"game_account_id,omitempty" gorm:"type:uuid"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Tournament *Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
}

// TournamentResult is the final standing of one player in a completed tournament.
type TournamentResult struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	TournamentID string    `json:"tournament_id" gorm:"type:uuid;not null;index"`
	UserID       string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Position     int       `json:"position" gorm:"not null"`
	Kills        int       `json:"kills" gorm:"default:0"`
	PrizeAmount  int64     `json:"prize_amount" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	// Denormalized for leaderboards
	Username string `json:"username,omitempty" gorm:"-"`
}

const (
	JoinAttemptPending   = "pending"
	JoinAttemptSucceeded = "succeeded"
	JoinAttemptAborted   = "aborted"
)

// JoinAttempt is the durable log of one join request, keyed by the client's idempotency key.
type JoinAttempt struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID         string  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_join_attempt_key"`
	IdempotencyKey string  `json:"idempotency_key" gorm:"type:varchar(128);not null;uniqueIndex:idx_join_attempt_key"`
	TournamentID   string  `json:"tournament_id" gorm:"type:uuid;not null;index"`
	Status         string  `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	Step           string  `json:"step,omitempty" gorm:"type:varchar(32)"`
	Reason         string  `json:"reason,omitempty"`
	Compensated    bool    `json:"compensated" gorm:"default:false"`
	RegistrationID *string `json:"registration_id,omitempty" gorm:"type:uuid"`
	Timestamps
}
