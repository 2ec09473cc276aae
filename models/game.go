// models/game.go
package models

import (
	"time"
)

// Game is a title in the catalog. Tournaments reference it by name, not by id.
type Game struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string `json:"name" gorm:"not null"`
	Slug      string `json:"slug" gorm:"uniqueIndex;not null"`
	ImageURL  string `json:"image_url"`
	IsActive  bool   `json:"is_active" gorm:"default:true;index"`
	SortOrder int    `json:"sort_order" gorm:"column:sort_order;default:0"`
	Timestamps

	// Calculated fields (not stored in DB)
	LiveTournaments int64 `json:"live_tournaments" gorm:"-"`
}

// Banner is a home page promotion.
type Banner struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url" gorm:"not null"`
	LinkURL   string    `json:"link_url,omitempty"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	SortOrder int       `json:"sort_order" gorm:"column:sort_order;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
