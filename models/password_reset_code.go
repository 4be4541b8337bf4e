package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrResetCodeUsed    = errors.New("password reset code already used")
	ErrResetCodeExpired = errors.New("password reset code expired")
)

// CodeState is the lifecycle of a reset code. A consumed code has no row at
// all (the reset flow deletes it), so only the first three states are ever
// observable on a loaded record.
type CodeState string

const (
	CodeIssued   CodeState = "issued"
	CodeVerified CodeState = "verified"
	CodeExpired  CodeState = "expired"
	CodeConsumed CodeState = "consumed"
)

// PasswordResetCode holds the bcrypt hash of a one-time 6-digit code. The
// unique index on UserID gives upsert-on-user semantics: a new request
// replaces the previous code instead of stacking a second live one.
type PasswordResetCode struct {
	gorm.Model
	UserID    uint      `gorm:"not null;uniqueIndex"`
	CodeHash  string    `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (PasswordResetCode) TableName() string {
	return "password_reset_codes"
}

func (c PasswordResetCode) IsExpired(reference time.Time) bool {
	if reference.IsZero() {
		reference = time.Now()
	}
	return !reference.Before(c.ExpiresAt)
}

// State reports the code's lifecycle state at the reference time. Expiry wins
// over the used flag so a verified-then-expired code reads as expired.
func (c PasswordResetCode) State(reference time.Time) CodeState {
	if c.IsExpired(reference) {
		return CodeExpired
	}
	if c.Used {
		return CodeVerified
	}
	return CodeIssued
}

// Verifiable returns the typed error for any state that cannot transition to
// verified.
func (c PasswordResetCode) Verifiable(reference time.Time) error {
	switch c.State(reference) {
	case CodeVerified:
		return ErrResetCodeUsed
	case CodeExpired:
		return ErrResetCodeExpired
	default:
		return nil
	}
}

// MarkVerified flips the code to verified with a conditional UPDATE so two
// concurrent verifications of the same code cannot both succeed. The loser of
// the race gets the typed error for the state the winner left behind.
func (c *PasswordResetCode) MarkVerified(tx *gorm.DB, reference time.Time) error {
	if reference.IsZero() {
		reference = time.Now()
	}

	if err := c.Verifiable(reference); err != nil {
		return err
	}

	res := tx.Model(&PasswordResetCode{}).
		Where("id = ? AND used = ? AND expires_at > ?", c.ID, false, reference).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var latest PasswordResetCode
		if err := tx.First(&latest, c.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetCodeUsed
			}
			return err
		}

		if latest.IsExpired(reference) {
			return ErrResetCodeExpired
		}
		return ErrResetCodeUsed
	}

	c.Used = true
	return nil
}
