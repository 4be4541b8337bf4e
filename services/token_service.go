package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
	PurposeReset   = "reset"
)

type Claims struct {
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the three token tiers. Access, refresh and
// reset tokens carry a purpose claim and are signed with independent secrets,
// so none of them can stand in for another even if a secret leaks.
type TokenService struct {
	db  *gorm.DB
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenService(db *gorm.DB, cfg config.JWTConfig) *TokenService {
	return &TokenService{db: db, cfg: cfg, now: time.Now}
}

// WithClock overrides the service clock. Tests use it to move past expiries
// without sleeping.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	ts.now = now
	return ts
}

func (ts *TokenService) IssueAccessToken(userID uint) (string, error) {
	return ts.sign(userID, PurposeAccess, ts.cfg.AccessSecret, ts.cfg.AccessTokenTTL)
}

func (ts *TokenService) IssueResetToken(userID uint) (string, error) {
	return ts.sign(userID, PurposeReset, ts.cfg.ResetSecret, ts.cfg.ResetTokenTTL)
}

// IssueRefreshToken signs a refresh token and persists it on the user row in
// one UPDATE, overwriting whatever token was stored before. The previous
// refresh token stops matching immediately even though its signature stays
// valid until expiry.
func (ts *TokenService) IssueRefreshToken(userID uint) (string, error) {
	signed, expiresAt, err := ts.signWithExpiry(userID, PurposeRefresh, ts.cfg.RefreshSecret, ts.cfg.RefreshTokenTTL)
	if err != nil {
		return "", err
	}

	res := ts.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token":            signed,
			"refresh_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return "", internalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", newError(KindNotFound, "user not found")
	}

	return signed, nil
}

// RotateRefreshToken exchanges the presented refresh token for a fresh one.
// The check that the presented token is still the active one and the
// overwrite happen in a single conditional UPDATE, so two concurrent refresh
// calls with the same token cannot both win.
func (ts *TokenService) RotateRefreshToken(userID uint, presented string) (string, error) {
	signed, expiresAt, err := ts.signWithExpiry(userID, PurposeRefresh, ts.cfg.RefreshSecret, ts.cfg.RefreshTokenTTL)
	if err != nil {
		return "", err
	}

	res := ts.db.Model(&models.User{}).
		Where("id = ? AND refresh_token = ? AND refresh_token_expires_at > ?", userID, presented, ts.now()).
		Updates(map[string]any{
			"refresh_token":            signed,
			"refresh_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return "", internalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", newError(KindAuthentication, "refresh token rejected")
	}

	return signed, nil
}

func (ts *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return ts.verify(token, PurposeAccess, ts.cfg.AccessSecret)
}

func (ts *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return ts.verify(token, PurposeRefresh, ts.cfg.RefreshSecret)
}

func (ts *TokenService) VerifyResetToken(token string) (*Claims, error) {
	return ts.verify(token, PurposeReset, ts.cfg.ResetSecret)
}

func (ts *TokenService) sign(userID uint, purpose string, secret []byte, ttl time.Duration) (string, error) {
	signed, _, err := ts.signWithExpiry(userID, purpose, secret, ttl)
	return signed, err
}

func (ts *TokenService) signWithExpiry(userID uint, purpose string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.cfg.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			// jti keeps two tokens minted in the same second distinct, so
			// rotation always produces a new token string
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, internalError(err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) verify(tokenString, expectedPurpose string, secret []byte) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, newError(KindValidation, "token is missing")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ts.cfg.Issuer),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		return nil, wrapError(KindAuthentication, "invalid or expired token", err)
	}

	if !parsed.Valid {
		return nil, newError(KindAuthentication, "invalid or expired token")
	}

	if !strings.EqualFold(claims.Purpose, expectedPurpose) {
		return nil, newError(KindAuthentication, "invalid or expired token")
	}

	return claims, nil
}
