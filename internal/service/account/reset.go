package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/auth"
)

const (
	resetCodePrefix  = "reset_code:"
	resetTokenPrefix = "reset_token:"
	resetCodeTTL     = 10 * time.Minute
	resetTokenTTL    = 15 * time.Minute
)

var (
	ErrResetCodeInvalid  = errors.New("reset code not found or expired")
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)

// ForgotResult reports how the verification code was delivered. Code is
// populated only in dev mode without a configured mailer.
type ForgotResult struct {
	Code    string
	DevMode bool
}

// ForgotPassword generates a 6-digit verification code, stores it with a
// short TTL, and emails it to the account owner.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*ForgotResult, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	if err := s.codes.Set(ctx, resetCodePrefix+user.Email, code, resetCodeTTL); err != nil {
		return nil, fmt.Errorf("store reset code: %w", err)
	}

	if s.mailer != nil && s.mailer.Configured() {
		if err := s.mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
			return nil, fmt.Errorf("send reset code: %w", err)
		}
		return &ForgotResult{}, nil
	}

	if s.devMode {
		log.Printf("account: mailer not configured, returning reset code for %s in response (dev mode)", user.Email)
		return &ForgotResult{Code: code, DevMode: true}, nil
	}
	return nil, errors.New("email delivery not configured")
}

// VerifyResetCode exchanges a valid code for a short-lived reset token.
// The code is single use.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	if email == "" || code == "" {
		return "", errors.New("email and code are required")
	}
	stored, err := s.codes.Get(ctx, resetCodePrefix+email)
	if err != nil {
		return "", ErrResetCodeInvalid
	}
	if stored != code {
		return "", ErrResetCodeInvalid
	}
	_ = s.codes.Del(ctx, resetCodePrefix+email)

	token, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.codes.Set(ctx, resetTokenPrefix+token, email, resetTokenTTL); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return errors.New("reset token and new password are required")
	}
	email, err := s.codes.Get(ctx, resetTokenPrefix+resetToken)
	if err != nil {
		return ErrResetTokenInvalid
	}
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hashPassword(newPassword), user.ID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	_ = s.codes.Del(ctx, resetTokenPrefix+resetToken)
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
