package handlers

import (
	"net/mail"
	"strings"

	"github.com/David-999-david/man-app-server/dto"
	"github.com/David-999-david/man-app-server/middleware"
	"github.com/David-999-david/man-app-server/models"
	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth  *services.AuthService
	reset *services.ResetService
}

func NewAuthHandler(auth *services.AuthService, reset *services.ResetService) *AuthHandler {
	return &AuthHandler{auth: auth, reset: reset}
}

// POST /api/auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	user, pair, err := h.auth.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusCreated, "account created", authResponse(user, pair))
}

// POST /api/auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	user, pair, err := h.auth.SignIn(req.Email, req.Password)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "signed in", authResponse(user, pair))
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "tokens refreshed", dto.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

// GET /api/auth/me
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	user, err := h.auth.Profile(userID)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "profile", userSummary(user))
}

// POST /api/auth/forgot-password
//
// Always acknowledges with the same message, whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "email is required", nil)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid email format", nil)
	}

	if err := h.reset.RequestCode(req.Email); err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "If the email exists, a reset code has been sent", nil)
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req dto.VerifyResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "email and code are required", nil)
	}

	resetToken, err := h.reset.VerifyCode(req.Email, req.Code)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "code verified", dto.VerifyResetCodeResponse{ResetToken: resetToken})
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.PasswordResetSubmission
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	if strings.TrimSpace(req.ResetToken) == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "reset token is required", nil)
	}

	if err := h.reset.ResetPassword(req.ResetToken, req.NewPassword); err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "password updated", nil)
}

func authResponse(user models.User, pair services.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		User:         userSummary(user),
	}
}

func userSummary(user models.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
