package models

import (
	"time"
)

// Roles, least to most privileged. Moderation endpoints accept moderator,
// content_manager and admin; invitation management is admin only.
const (
	RoleUser           = "user"
	RoleModerator      = "moderator"
	RoleContentManager = "content_manager"
	RoleAdmin          = "admin"
)

// InvitableRole reports whether role may be granted through an invitation
// code. Admin accounts are never minted by invitation.
func InvitableRole(role string) bool {
	return role == RoleModerator || role == RoleContentManager
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Username     string `gorm:"not null" json:"username"`
	Role         string `gorm:"size:20;default:'user';not null" json:"role"`

	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	VerifyCode    string     `gorm:"size:20" json:"-"`
	VerifyExpires *time.Time `json:"-"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
