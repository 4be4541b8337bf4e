package services

import (
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/David-999-david/man-app-server/models"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenerateResetCodeRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateResetCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
		n, _ := strconv.Atoi(code)
		if n < 100000 || n > 899999 {
			t.Fatalf("code %d outside 100000..899999", n)
		}
	}
}

func TestRequestCodeUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	if err := env.reset.RequestCode("nobody@x.com"); err != nil {
		t.Fatalf("unknown email must not error, got %v", err)
	}

	var count int64
	if err := env.db.Model(&models.PasswordResetCode{}).Count(&count).Error; err != nil {
		t.Fatalf("count codes: %v", err)
	}
	if count != 0 {
		t.Fatalf("unknown email created %d code rows", count)
	}
	if len(env.mailer.sentCodes) != 0 {
		t.Fatal("unknown email triggered a mail")
	}
}

func TestRequestCodeStoresHashAndMailsPlaintext(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	code := env.mailer.lastCode(t)
	if !sixDigits.MatchString(code) {
		t.Fatalf("mailed code %q is not six digits", code)
	}
	if env.mailer.sentTo[0] != "a@x.com" {
		t.Fatalf("mailed to %q, want a@x.com", env.mailer.sentTo[0])
	}

	var record models.PasswordResetCode
	if err := env.db.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		t.Fatalf("load code row: %v", err)
	}
	if record.CodeHash == code {
		t.Fatal("code stored in plaintext")
	}
	if record.Used {
		t.Fatal("fresh code marked used")
	}
}

func TestRequestCodeReplacesPriorCode(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	codes := []string{"111111", "222222"}
	env.reset.WithCodeSource(func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	})

	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	firstCode := env.mailer.lastCode(t)

	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	secondCode := env.mailer.lastCode(t)

	var count int64
	if err := env.db.Model(&models.PasswordResetCode{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count codes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one live code row, got %d", count)
	}

	// the first code no longer verifies
	if _, err := env.reset.VerifyCode("a@x.com", firstCode); !IsKind(err, KindAuthentication) {
		t.Fatalf("superseded code error = %v, want authentication kind", err)
	}
	if _, err := env.reset.VerifyCode("a@x.com", secondCode); err != nil {
		t.Fatalf("current code failed to verify: %v", err)
	}
}

func TestRequestCodeDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.auth.SignUp("A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	env.mailer.err = errors.New("smtp connection refused")

	err := env.reset.RequestCode("a@x.com")
	if !IsKind(err, KindDelivery) {
		t.Fatalf("error = %v, want delivery kind", err)
	}
}

func TestVerifyCodeSingleUse(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	code := env.mailer.lastCode(t)

	resetToken, err := env.reset.VerifyCode("a@x.com", code)
	if err != nil {
		t.Fatalf("verify code: %v", err)
	}

	claims, err := env.tokens.VerifyResetToken(resetToken)
	if err != nil {
		t.Fatalf("verify reset token: %v", err)
	}
	if claims.UserID != user.ID || claims.Purpose != PurposeReset {
		t.Fatalf("reset claims = (%d, %q), want (%d, %q)", claims.UserID, claims.Purpose, user.ID, PurposeReset)
	}

	// the same code cannot be verified twice, even before expiry
	if _, err := env.reset.VerifyCode("a@x.com", code); !IsKind(err, KindAuthentication) {
		t.Fatalf("second verification error = %v, want authentication kind", err)
	}
}

func TestVerifyCodeExpired(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.auth.SignUp("A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	code := env.mailer.lastCode(t)

	env.clock.Advance(11 * time.Minute)

	if _, err := env.reset.VerifyCode("a@x.com", code); !IsKind(err, KindAuthentication) {
		t.Fatalf("expired code error = %v, want authentication kind", err)
	}
}

func TestVerifyCodeMismatch(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.auth.SignUp("A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	code := env.mailer.lastCode(t)

	wrong := "100000"
	if wrong == code {
		wrong = "100001"
	}

	if _, err := env.reset.VerifyCode("a@x.com", wrong); !IsKind(err, KindAuthentication) {
		t.Fatalf("mismatch error = %v, want authentication kind", err)
	}

	// a mismatch does not burn the code
	if _, err := env.reset.VerifyCode("a@x.com", code); err != nil {
		t.Fatalf("correct code failed after mismatch: %v", err)
	}
}

func TestVerifyCodeWithoutRequest(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.auth.SignUp("A", "a@x.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := env.reset.VerifyCode("a@x.com", "123456"); !IsKind(err, KindAuthentication) {
		t.Fatalf("no-code error = %v, want authentication kind", err)
	}
	if _, err := env.reset.VerifyCode("nobody@x.com", "123456"); !IsKind(err, KindAuthentication) {
		t.Fatalf("unknown email error = %v, want authentication kind", err)
	}
}

func TestResetPasswordScenario(t *testing.T) {
	env := newTestEnv(t)

	user, pair, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := env.reset.RequestCode("a@x.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	code := env.mailer.lastCode(t)

	resetToken, err := env.reset.VerifyCode("a@x.com", code)
	if err != nil {
		t.Fatalf("verify code: %v", err)
	}

	if err := env.reset.ResetPassword(resetToken, "newpass1"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	// old password no longer works, new one does
	if _, _, err := env.auth.SignIn("a@x.com", "secret1"); !IsKind(err, KindAuthentication) {
		t.Fatalf("old password error = %v, want authentication kind", err)
	}
	env.clock.Advance(time.Second)
	if _, _, err := env.auth.SignIn("a@x.com", "newpass1"); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}

	// the pre-reset refresh token was revoked
	if _, err := env.auth.Refresh(pair.RefreshToken); !IsKind(err, KindAuthentication) {
		t.Fatalf("pre-reset refresh error = %v, want authentication kind", err)
	}

	// the code row is gone
	var count int64
	if err := env.db.Model(&models.PasswordResetCode{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count codes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected code row to be deleted, found %d", count)
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	resetToken, err := env.tokens.IssueResetToken(user.ID)
	if err != nil {
		t.Fatalf("issue reset token: %v", err)
	}

	if err := env.reset.ResetPassword(resetToken, "short"); !IsKind(err, KindValidation) {
		t.Fatalf("weak password error = %v, want validation kind", err)
	}
}

func TestResetPasswordRejectsWrongPurposeToken(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	// an access token must not authorize a password reset
	accessToken, err := env.tokens.IssueAccessToken(user.ID)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	if err := env.reset.ResetPassword(accessToken, "newpass1"); !IsKind(err, KindAuthentication) {
		t.Fatalf("wrong-purpose error = %v, want authentication kind", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	user, _, err := env.auth.SignUp("A", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	resetToken, err := env.tokens.IssueResetToken(user.ID)
	if err != nil {
		t.Fatalf("issue reset token: %v", err)
	}

	env.clock.Advance(16 * time.Minute)

	if err := env.reset.ResetPassword(resetToken, "newpass1"); !IsKind(err, KindAuthentication) {
		t.Fatalf("expired token error = %v, want authentication kind", err)
	}
}
