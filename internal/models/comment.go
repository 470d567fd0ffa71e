package models

import (
	"time"
)

// Comment is immutable once created; the only delete path is the moderator
// escape hatch, plus the cascade when the parent idea is removed.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IdeaID    uint      `gorm:"not null;index" json:"idea_id"`
	Author    string    `gorm:"not null;default:'Anonymous'" json:"author"`
	AuthorID  *uint     `json:"author_id,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
