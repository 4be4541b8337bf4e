package services

import (
	"sync"
	"testing"
	"time"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
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
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:    []byte("test-access-secret"),
		RefreshSecret:   []byte("test-refresh-secret"),
		ResetSecret:     []byte("test-reset-secret"),
		Issuer:          "man-app-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   15 * time.Minute,
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: 6,
		ResetCodeTTL:      10 * time.Minute,
	}
}

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeMailer records sent codes and can be told to fail.
type fakeMailer struct {
	sentTo    []string
	sentCodes []string
	err       error
}

func (f *fakeMailer) SendPasswordResetCode(toEmail, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sentTo = append(f.sentTo, toEmail)
	f.sentCodes = append(f.sentCodes, code)
	return nil
}

func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(f.sentCodes) == 0 {
		t.Fatal("no reset code was mailed")
	}
	return f.sentCodes[len(f.sentCodes)-1]
}

type testEnv struct {
	db     *gorm.DB
	clock  *fakeClock
	mailer *fakeMailer
	tokens *TokenService
	auth   *AuthService
	reset  *ResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	clock := newFakeClock()
	mailer := &fakeMailer{}

	tokens := NewTokenService(db, testJWTConfig()).WithClock(clock.Now)
	auth := NewAuthService(db, tokens, testAuthConfig())
	auth.now = clock.Now
	reset := NewResetService(db, tokens, mailer, testAuthConfig()).WithClock(clock.Now)

	return &testEnv{
		db:     db,
		clock:  clock,
		mailer: mailer,
		tokens: tokens,
		auth:   auth,
		reset:  reset,
	}
}
