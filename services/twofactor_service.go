package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTwoFactorUnavailable = errors.New("two-factor verification unavailable: redis not connected")
	ErrInvalidCode          = errors.New("invalid or expired verification code")
)

const twoFactorCodeTTL = 5 * time.Minute

type UserFlagStore interface {
	SetTwoFactor(userID int, enabled bool) error
}

// TwoFactorService hands out short-lived single-use email codes backed by
// redis.
type TwoFactorService struct {
	redis  *redis.Client
	users  UserFlagStore
	mailer Mailer
	locale string
}

func NewTwoFactorService(redisClient *redis.Client, users UserFlagStore, mailer Mailer, locale string) *TwoFactorService {
	return &TwoFactorService{redis: redisClient, users: users, mailer: mailer, locale: locale}
}

func codeKey(email string) string {
	return "2fa:" + email
}

// SendCode generates a 6-digit code, stores it with a 5 minute TTL and
// emails it to the user.
func (s *TwoFactorService) SendCode(email string) error {
	if s.redis == nil {
		return ErrTwoFactorUnavailable
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.redis.Set(context.Background(), codeKey(email), code, twoFactorCodeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	return s.mailer.SendTemplate("two_factor_code", s.locale, email, map[string]string{"code": code})
}

// VerifyCode checks the submitted code and consumes it on success.
func (s *TwoFactorService) VerifyCode(email, code string) error {
	if s.redis == nil {
		return ErrTwoFactorUnavailable
	}

	stored, err := s.redis.Get(context.Background(), codeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidCode
		}
		return err
	}
	if stored != code {
		return ErrInvalidCode
	}

	s.redis.Del(context.Background(), codeKey(email))
	return nil
}

// Enable starts 2FA setup: a code is sent and Confirm must be called with it.
func (s *TwoFactorService) Enable(email string) error {
	return s.SendCode(email)
}

// Confirm finishes setup by verifying the code and flipping the user flag.
func (s *TwoFactorService) Confirm(userID int, email, code string) error {
	if err := s.VerifyCode(email, code); err != nil {
		return err
	}
	return s.users.SetTwoFactor(userID, true)
}

func (s *TwoFactorService) Disable(userID int) error {
	return s.users.SetTwoFactor(userID, false)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
