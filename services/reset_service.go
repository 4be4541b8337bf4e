package services

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/models"
	"github.com/David-999-david/man-app-server/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResetMailer delivers the plaintext one-time code. Only the bcrypt hash of
// the code ever reaches the database.
type ResetMailer interface {
	SendPasswordResetCode(toEmail, code string) error
}

// ResetService runs the OTP password-reset flow: request a code, verify it,
// consume the resulting reset token to set a new password.
type ResetService struct {
	db      *gorm.DB
	tokens  *TokenService
	mailer  ResetMailer
	cfg     config.AuthConfig
	now     func() time.Time
	newCode func() (string, error)
}

func NewResetService(db *gorm.DB, tokens *TokenService, mailer ResetMailer, cfg config.AuthConfig) *ResetService {
	return &ResetService{
		db:      db,
		tokens:  tokens,
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
		newCode: generateResetCode,
	}
}

// WithClock overrides the service clock for tests.
func (rs *ResetService) WithClock(now func() time.Time) *ResetService {
	rs.now = now
	return rs
}

// WithCodeSource overrides the OTP source for tests.
func (rs *ResetService) WithCodeSource(newCode func() (string, error)) *ResetService {
	rs.newCode = newCode
	return rs
}

// generateResetCode draws a uniform 6-digit code from crypto/rand. The range
// 100000..899999 keeps every code exactly six digits with no leading zero.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(800000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// RequestCode issues (or replaces) the one-time code for the account behind
// email and mails it. An unknown email returns success without touching the
// store, so the endpoint cannot be used to enumerate accounts.
func (rs *ResetService) RequestCode(email string) error {
	var user models.User
	if err := rs.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return internalError(err)
	}

	code, err := rs.newCode()
	if err != nil {
		return internalError(err)
	}

	codeHash, err := utils.HashSecret(code, rs.cfg.BcryptCost)
	if err != nil {
		return internalError(err)
	}

	now := rs.now()
	record := models.PasswordResetCode{
		UserID:    user.ID,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(rs.cfg.ResetCodeTTL),
		Used:      false,
	}

	// upsert on user_id: a repeat request replaces the previous code instead
	// of leaving two live ones
	err = rs.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code_hash":  record.CodeHash,
			"expires_at": record.ExpiresAt,
			"used":       false,
			"updated_at": now,
		}),
	}).Create(&record).Error
	if err != nil {
		return internalError(err)
	}

	if err := rs.mailer.SendPasswordResetCode(user.Email, code); err != nil {
		return wrapError(KindDelivery, "failed to send reset code", err)
	}

	return nil
}

// VerifyCode checks a submitted code and, on success, marks it used and
// returns a short-lived reset-purpose token. A code verifies at most once,
// even before its expiry.
func (rs *ResetService) VerifyCode(email, code string) (string, error) {
	var user models.User
	if err := rs.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newError(KindAuthentication, "invalid email or code")
		}
		return "", internalError(err)
	}

	var record models.PasswordResetCode
	if err := rs.db.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newError(KindAuthentication, "no reset code requested")
		}
		return "", internalError(err)
	}

	now := rs.now()
	if err := record.Verifiable(now); err != nil {
		switch {
		case errors.Is(err, models.ErrResetCodeUsed):
			return "", newError(KindAuthentication, "reset code already used")
		case errors.Is(err, models.ErrResetCodeExpired):
			return "", newError(KindAuthentication, "reset code expired")
		default:
			return "", internalError(err)
		}
	}

	if !utils.CheckSecret(record.CodeHash, code) {
		return "", newError(KindAuthentication, "invalid email or code")
	}

	if err := record.MarkVerified(rs.db, now); err != nil {
		switch {
		case errors.Is(err, models.ErrResetCodeUsed):
			return "", newError(KindAuthentication, "reset code already used")
		case errors.Is(err, models.ErrResetCodeExpired):
			return "", newError(KindAuthentication, "reset code expired")
		default:
			return "", internalError(err)
		}
	}

	return rs.tokens.IssueResetToken(user.ID)
}

// ResetPassword consumes a reset token and sets the new password. The user's
// refresh token is cleared in the same UPDATE, so every session issued before
// the reset has to sign in again.
func (rs *ResetService) ResetPassword(resetToken, newPassword string) error {
	claims, err := rs.tokens.VerifyResetToken(resetToken)
	if err != nil {
		return newError(KindAuthentication, "invalid or expired reset token")
	}

	if len(newPassword) < rs.cfg.MinPasswordLength {
		return newError(KindValidation, "password is too short")
	}

	passwordHash, err := utils.HashSecret(newPassword, rs.cfg.BcryptCost)
	if err != nil {
		return internalError(err)
	}

	res := rs.db.Model(&models.User{}).
		Where("id = ?", claims.UserID).
		Updates(map[string]any{
			"password_hash":            passwordHash,
			"refresh_token":            nil,
			"refresh_token_expires_at": nil,
		})
	if res.Error != nil {
		return internalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, "user not found")
	}

	// hard delete so the unique index on user_id stays free for the next
	// request
	if err := rs.db.Unscoped().
		Where("user_id = ?", claims.UserID).
		Delete(&models.PasswordResetCode{}).Error; err != nil {
		return internalError(err)
	}

	return nil
}
