package services

import (
	"errors"
	"strings"
	"time"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/models"
	"github.com/David-999-david/man-app-server/utils"

	"gorm.io/gorm"
)

// TokenPair is what every successful sign-up, sign-in and refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the account flows over the credential store and
// the token issuer.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	cfg    config.AuthConfig
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *TokenService, cfg config.AuthConfig) *AuthService {
	return &AuthService{db: db, tokens: tokens, cfg: cfg, now: time.Now}
}

// SignUp registers a new account and signs it in. The email pre-check and the
// unique constraint both surface as the same conflict error; under two
// concurrent sign-ups with one email, the constraint is the guard that holds.
func (as *AuthService) SignUp(name, email, password string) (models.User, TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return models.User{}, TokenPair{}, newError(KindValidation, "name, email and password are required")
	}

	var count int64
	if err := as.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, TokenPair{}, internalError(err)
	}
	if count > 0 {
		return models.User{}, TokenPair{}, newError(KindConflict, "email is already taken")
	}

	passwordHash, err := utils.HashSecret(password, as.cfg.BcryptCost)
	if err != nil {
		return models.User{}, TokenPair{}, internalError(err)
	}

	user := models.User{Name: name, Email: email, PasswordHash: passwordHash}
	if err := as.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, TokenPair{}, newError(KindConflict, "email is already taken")
		}
		return models.User{}, TokenPair{}, internalError(err)
	}

	pair, err := as.issuePair(user.ID)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	return user, pair, nil
}

// SignIn authenticates by email and password. Unknown email and wrong
// password return the same error so the endpoint does not reveal which
// accounts exist.
func (as *AuthService) SignIn(email, password string) (models.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, TokenPair{}, newError(KindValidation, "email and password are required")
	}

	var user models.User
	if err := as.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, newError(KindAuthentication, "invalid credentials")
		}
		return models.User{}, TokenPair{}, internalError(err)
	}

	if !utils.CheckSecret(user.PasswordHash, password) {
		return models.User{}, TokenPair{}, newError(KindAuthentication, "invalid credentials")
	}

	lastLogin := as.now()
	if err := as.db.Model(&user).Update("last_login_at", lastLogin).Error; err != nil {
		return models.User{}, TokenPair{}, internalError(err)
	}
	user.LastLoginAt = &lastLogin

	pair, err := as.issuePair(user.ID)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh exchanges a valid, still-active refresh token for a new pair. The
// old refresh token is dead the moment the exchange succeeds.
func (as *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, newError(KindValidation, "refresh token is missing")
	}

	claims, err := as.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	newRefresh, err := as.tokens.RotateRefreshToken(claims.UserID, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := as.tokens.IssueAccessToken(claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

// Profile loads the account behind an already-verified access token.
func (as *AuthService) Profile(userID uint) (models.User, error) {
	var user models.User
	if err := as.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, newError(KindNotFound, "user not found")
		}
		return models.User{}, internalError(err)
	}
	return user, nil
}

func (as *AuthService) issuePair(userID uint) (TokenPair, error) {
	access, err := as.tokens.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := as.tokens.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
