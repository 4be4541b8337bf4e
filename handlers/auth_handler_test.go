package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/handlers"
	"github.com/David-999-david/man-app-server/models"
	"github.com/David-999-david/man-app-server/routes"
	"github.com/David-999-david/man-app-server/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubMailer struct {
	codes []string
}

func (s *stubMailer) SendPasswordResetCode(toEmail, code string) error {
	s.codes = append(s.codes, code)
	return nil
}

type stubStorage struct{}

func (stubStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (stubStorage) PresignURL(key string) (string, error) {
	return "https://example.com/" + key, nil
}

func (stubStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.PasswordResetCode{},
		&models.Todo{},
		&models.Address{},
		&models.AddressImage{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	jwtCfg := config.JWTConfig{
		AccessSecret:    []byte("test-access-secret"),
		RefreshSecret:   []byte("test-refresh-secret"),
		ResetSecret:     []byte("test-reset-secret"),
		Issuer:          "man-app-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   15 * time.Minute,
	}
	authCfg := config.AuthConfig{
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: 6,
		ResetCodeTTL:      10 * time.Minute,
	}

	mailer := &stubMailer{}
	storage := stubStorage{}
	tokens := services.NewTokenService(db, jwtCfg)

	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(
			services.NewAuthService(db, tokens, authCfg),
			services.NewResetService(db, tokens, mailer, authCfg),
		),
		User:    handlers.NewUserHandler(services.NewUserService(db, storage)),
		Todo:    handlers.NewTodoHandler(services.NewTodoService(db)),
		Address: handlers.NewAddressHandler(services.NewAddressService(db, storage)),
	}

	app := fiber.New()
	routes.Register(app, tokens, h)
	return app, mailer
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestSignUpSignInFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/signup", fiber.Map{
		"name":     "A",
		"email":    "a@x.com",
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}
	signupData := decodeData(t, resp)
	if signupData["access_token"] == "" || signupData["refresh_token"] == "" {
		t.Fatal("signup did not return a token pair")
	}

	resp = postJSON(t, app, "/api/auth/signup", fiber.Map{
		"name":     "B",
		"email":    "a@x.com",
		"password": "other",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/signin", fiber.Map{
		"email":    "a@x.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/signin", fiber.Map{
		"email":    "a@x.com",
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signin status = %d, want 200", resp.StatusCode)
	}
	signinData := decodeData(t, resp)

	// profile via the fresh access token
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signinData["access_token"].(string))
	profileResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("profile request: %v", err)
	}
	if profileResp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", profileResp.StatusCode)
	}

	// missing/garbage auth is rejected
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	anonResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("anonymous profile request: %v", err)
	}
	if anonResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous profile status = %d, want 401", anonResp.StatusCode)
	}
}

func TestRefreshEndpointRotation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/signup", fiber.Map{
		"name":     "A",
		"email":    "a@x.com",
		"password": "secret1",
	})
	signupData := decodeData(t, resp)
	original := signupData["refresh_token"].(string)

	resp = postJSON(t, app, "/api/auth/refresh", fiber.Map{"refresh_token": original})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", resp.StatusCode)
	}

	// the original token is now dead
	resp = postJSON(t, app, "/api/auth/refresh", fiber.Map{"refresh_token": original})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status = %d, want 401", resp.StatusCode)
	}

	// missing token
	resp = postJSON(t, app, "/api/auth/refresh", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing refresh token status = %d, want 400", resp.StatusCode)
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	app, mailer := newTestApp(t)

	postJSON(t, app, "/api/auth/signup", fiber.Map{
		"name":     "A",
		"email":    "a@x.com",
		"password": "secret1",
	})

	// unknown email gets the same acknowledgement and no mail
	resp := postJSON(t, app, "/api/auth/forgot-password", fiber.Map{"email": "nobody@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown email status = %d, want 200", resp.StatusCode)
	}
	if len(mailer.codes) != 0 {
		t.Fatal("unknown email triggered a mail")
	}

	resp = postJSON(t, app, "/api/auth/forgot-password", fiber.Map{"email": "a@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot-password status = %d, want 200", resp.StatusCode)
	}
	if len(mailer.codes) != 1 {
		t.Fatalf("expected one mailed code, got %d", len(mailer.codes))
	}
	code := mailer.codes[0]

	resp = postJSON(t, app, "/api/auth/verify-otp", fiber.Map{"email": "a@x.com", "code": code})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-otp status = %d, want 200", resp.StatusCode)
	}
	verifyData := decodeData(t, resp)
	resetToken := verifyData["reset_token"].(string)

	// second verification of the same code fails
	resp = postJSON(t, app, "/api/auth/verify-otp", fiber.Map{"email": "a@x.com", "code": code})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("reused code status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/reset-password", fiber.Map{
		"reset_token":  resetToken,
		"new_password": "newpass1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset-password status = %d, want 200", resp.StatusCode)
	}

	// old password dead, new password works
	resp = postJSON(t, app, "/api/auth/signin", fiber.Map{"email": "a@x.com", "password": "secret1"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password status = %d, want 401", resp.StatusCode)
	}
	resp = postJSON(t, app, "/api/auth/signin", fiber.Map{"email": "a@x.com", "password": "newpass1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new password status = %d, want 200", resp.StatusCode)
	}
}
