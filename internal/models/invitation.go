package models

import (
	"time"
)

// InvitationCode is a capability token: whoever registers with it gets the
// stored role. UseCount is only ever advanced by a conditional UPDATE
// (use_count < max_uses), so concurrent redemptions of a nearly-spent code
// cannot overshoot.
type InvitationCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Role      string     `gorm:"size:20;not null" json:"role"`
	CreatedBy uint       `gorm:"not null" json:"created_by"`
	MaxUses   int        `gorm:"not null;default:1" json:"max_uses"`
	UseCount  int        `gorm:"not null;default:0" json:"use_count"`
	UsedBy    *uint      `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
