package models

import (
	"time"
)

// Idea statuses. The machine is intentionally permissive: a moderator may
// move an idea from any status to any other, including completed -> pending.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the known idea statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Idea struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Author      string `gorm:"not null;default:'Anonymous'" json:"author"`
	AuthorID    *uint  `gorm:"index" json:"author_id,omitempty"`

	// Cached counter kept in step with the votes table by the ledger's
	// vote transaction. Read paths still aggregate the real rows.
	VoteCount int `gorm:"not null;default:0" json:"votes"`

	Status     string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	IsFeatured bool   `gorm:"not null;default:false" json:"is_featured"`

	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
