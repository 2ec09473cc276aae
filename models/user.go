package models

import (
	"time"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a player account. Coins is the spendable balance and never goes negative.
type User struct {
	ID           string  `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"not null"`
	Username     *string `json:"username,omitempty" gorm:"index"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	Coins        int64   `json:"coins" gorm:"not null;default:0;check:coins >= 0"`
	Timestamps
}

// DisplayName falls back to the email's local part when no username is set.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	for i, r := range u.Email {
		if r == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// Session backs one issued access token. Revoked sessions are rejected even if the token is still valid.
type Session struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"` // token jti
	UserID    string     `json:"user_id" gorm:"type:uuid;not null;index"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the session can still authorize requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// GameAccount is an in-game identity a user registers into tournaments with.
type GameAccount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index"`
	GameName  string    `json:"game_name" gorm:"not null;default:'Universal'"`
	InGameID  string    `json:"in_game_id" gorm:"not null"`
	Nickname  *string   `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PlayerStats is derived from registrations and results, never stored.
type PlayerStats struct {
	Matches  int64 `json:"matches"`
	Wins     int64 `json:"wins"`
	Earnings int64 `json:"earnings"`
	WinRate  int   `json:"win_rate"`
}

// SpinRecord holds the last spin of a user; the cooldown is measured from LastSpinAt.
type SpinRecord struct {
	UserID          string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	LastSpinAt      time.Time `json:"last_spin_at" gorm:"not null"`
	LastResultIndex int       `json:"last_result_index"`
	LastResultLabel string    `json:"last_result_label"`
}
