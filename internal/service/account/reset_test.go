package account

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestForgotPasswordDevMode(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "segredo"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := svc.ForgotPassword(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if !result.DevMode {
		t.Fatalf("expected dev mode delivery without a mailer")
	}
	if !sixDigits.MatchString(result.Code) {
		t.Fatalf("expected 6-digit code, got %q", result.Code)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()

	if _, err := svc.ForgotPassword(context.Background(), "ninguem@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestForgotPasswordRequiresDeliveryInProd(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	svc := NewService(db, newFakeKV(), nil, false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "segredo"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.ForgotPassword(ctx, "ana@example.com"); err == nil {
		t.Fatalf("expected error when mail is unconfigured outside dev mode")
	}
}

func TestResetFlowEndToEnd(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "antiga"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	result, err := svc.ForgotPassword(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	if _, err := svc.VerifyResetCode(ctx, "ana@example.com", "000000"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected ErrResetCodeInvalid for wrong code, got %v", err)
	}

	token, err := svc.VerifyResetCode(ctx, "ana@example.com", result.Code)
	if err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}
	if token == "" {
		t.Fatalf("expected reset token")
	}

	// the code is single use
	if _, err := svc.VerifyResetCode(ctx, "ana@example.com", result.Code); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected code to be consumed, got %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "novissima"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "novissima"); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "antiga"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}

	// the token is single use as well
	if err := svc.ResetPassword(ctx, token, "outra"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected consumed token, got %v", err)
	}
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, db := newTestService(t)
	defer db.Close()

	if err := svc.ResetPassword(context.Background(), "nao-existe", "senha"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}
