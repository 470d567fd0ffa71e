// Package auth owns user accounts: registration, login, email verification
// and invitation codes. Handlers only ever see resolved users and roles.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ideaboard/internal/apperrors"
	"ideaboard/internal/models"
	"ideaboard/internal/utils"
)

const (
	verificationCodeLen = 6
	verificationTTL     = 24 * time.Hour
)

// Mailer is the outbound-mail collaborator. The real implementation lives
// in services; tests substitute a recorder.
type Mailer interface {
	SendVerificationEmail(to, code string)
}

// Service executes account operations against an injected handle.
type Service struct {
	db     *gorm.DB
	mail   Mailer
	logger *zap.Logger
}

// NewService constructs the auth service.
func NewService(db *gorm.DB, mail Mailer, logger *zap.Logger) *Service {
	return &Service{db: db, mail: mail, logger: logger}
}

// Register creates an account. With a valid invitation code the account is
// created directly in the code's role; otherwise it is a plain user. A
// verification code is generated and mailed in both cases.
func (s *Service) Register(ctx context.Context, email, password, username, inviteCode string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = utils.StripHTML(username)

	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidation("email", "invalid email address")
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, apperrors.NewValidation("password", "password must be at least 6 characters")
	}
	if username == "" {
		// Same default the old board used: local part of the email.
		username = strings.SplitN(email, "@", 2)[0]
	}
	if utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50 {
		return nil, apperrors.NewValidation("username", "username must be 3-50 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	code := utils.GenerateRandomCode(verificationCodeLen)
	expires := time.Now().Add(verificationTTL)

	user := models.User{
		Email:         email,
		PasswordHash:  hash,
		Username:      username,
		Role:          models.RoleUser,
		VerifyCode:    code,
		VerifyExpires: &expires,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inviteCode != "" {
			role, err := s.redeemInvitation(tx, inviteCode)
			if err != nil {
				return err
			}
			user.Role = role
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrEmailTaken
			}
			return err
		}
		if inviteCode != "" {
			// Backfill who consumed the code, for the audit trail.
			now := time.Now()
			if err := tx.Model(&models.InvitationCode{}).
				Where("code = ?", inviteCode).
				Updates(map[string]interface{}{"used_by": user.ID, "used_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mail.SendVerificationEmail(user.Email, code)
	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// redeemInvitation consumes one use of code inside the caller's transaction.
// The conditional relative UPDATE is what makes concurrent redemptions of a
// nearly-spent code safe: the WHERE clause admits at most max_uses winners.
func (s *Service) redeemInvitation(tx *gorm.DB, code string) (string, error) {
	var inv models.InvitationCode
	if err := tx.Where("code = ?", code).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidInvitation
		}
		return "", err
	}
	if inv.ExpiresAt != nil && time.Now().After(*inv.ExpiresAt) {
		return "", apperrors.ErrInvalidInvitation
	}

	res := tx.Model(&models.InvitationCode{}).
		Where("code = ? AND use_count < max_uses", code).
		UpdateColumn("use_count", gorm.Expr("use_count + ?", 1))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", apperrors.ErrInvalidInvitation
	}
	return inv.Role, nil
}

// Verify marks the account's email as confirmed if the code matches and has
// not expired.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidVerification
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if user.VerifyCode == "" || user.VerifyCode != code {
		return apperrors.ErrInvalidVerification
	}
	if user.VerifyExpires != nil && time.Now().After(*user.VerifyExpires) {
		return apperrors.ErrInvalidVerification
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verified": true,
		"verify_code":    "",
		"verify_expires": nil,
	}).Error
}

// Login checks credentials and stamps last_login. The session itself is the
// handler's business.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		s.logger.Warn("failed to stamp last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now
	return &user, nil
}

// GetUser loads a user by id, for session resolution.
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateInvitation mints a code granting role, with a use budget and an
// optional expiry. Only invitable roles are accepted; the admin role cannot
// be delegated through codes.
func (s *Service) CreateInvitation(ctx context.Context, createdBy uint, role string, maxUses int, expiresAt *time.Time) (*models.InvitationCode, error) {
	if !models.InvitableRole(role) {
		return nil, apperrors.NewValidation("role", "role must be moderator or content_manager")
	}
	if maxUses <= 0 {
		maxUses = 1
	}

	inv := models.InvitationCode{
		Code:      utils.GenerateInviteCode(),
		Role:      role,
		CreatedBy: createdBy,
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, err
	}
	s.logger.Info("invitation created",
		zap.String("role", role), zap.Int("max_uses", maxUses), zap.Uint("created_by", createdBy))
	return &inv, nil
}
