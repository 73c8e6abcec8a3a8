package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserFlags struct {
	flags map[int]bool
}

func (m *memUserFlags) SetTwoFactor(userID int, enabled bool) error {
	if m.flags == nil {
		m.flags = map[int]bool{}
	}
	m.flags[userID] = enabled
	return nil
}

func newTwoFactorFixture(t *testing.T) (*TwoFactorService, *miniredis.Miniredis, *recordingMailer, *memUserFlags) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mailer := &recordingMailer{}
	users := &memUserFlags{}
	return NewTwoFactorService(client, users, mailer, "en"), mr, mailer, users
}

func TestSendAndVerifyCode(t *testing.T) {
	svc, mr, mailer, _ := newTwoFactorFixture(t)

	require.NoError(t, svc.SendCode("jo@example.com"))

	require.Len(t, mailer.calls, 1)
	assert.Equal(t, "two_factor_code", mailer.calls[0].Template)
	assert.Equal(t, "jo@example.com", mailer.calls[0].To)
	code := mailer.calls[0].Variables["code"]
	require.Len(t, code, 6)

	stored, err := mr.Get("2fa:jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, code, stored)

	require.NoError(t, svc.VerifyCode("jo@example.com", code))

	t.Run("codes are single use", func(t *testing.T) {
		err := svc.VerifyCode("jo@example.com", code)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestVerifyCodeRejections(t *testing.T) {
	svc, mr, mailer, _ := newTwoFactorFixture(t)

	t.Run("no code issued", func(t *testing.T) {
		err := svc.VerifyCode("nobody@example.com", "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		require.NoError(t, svc.SendCode("jo@example.com"))
		err := svc.VerifyCode("jo@example.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)

		// A wrong guess does not consume the real code.
		code := mailer.calls[len(mailer.calls)-1].Variables["code"]
		assert.NoError(t, svc.VerifyCode("jo@example.com", code))
	})

	t.Run("expired code", func(t *testing.T) {
		require.NoError(t, svc.SendCode("jo@example.com"))
		code := mailer.calls[len(mailer.calls)-1].Variables["code"]

		mr.FastForward(5*time.Minute + time.Second)
		err := svc.VerifyCode("jo@example.com", code)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestEnableConfirmDisable(t *testing.T) {
	svc, _, mailer, users := newTwoFactorFixture(t)

	require.NoError(t, svc.Enable("jo@example.com"))
	code := mailer.calls[0].Variables["code"]

	t.Run("wrong code leaves the flag untouched", func(t *testing.T) {
		err := svc.Confirm(3, "jo@example.com", "999999")
		assert.ErrorIs(t, err, ErrInvalidCode)
		assert.False(t, users.flags[3])
	})

	require.NoError(t, svc.Confirm(3, "jo@example.com", code))
	assert.True(t, users.flags[3])

	require.NoError(t, svc.Disable(3))
	assert.False(t, users.flags[3])
}

func TestTwoFactorWithoutRedis(t *testing.T) {
	svc := NewTwoFactorService(nil, &memUserFlags{}, &recordingMailer{}, "en")
	assert.ErrorIs(t, svc.SendCode("jo@example.com"), ErrTwoFactorUnavailable)
	assert.ErrorIs(t, svc.VerifyCode("jo@example.com", "123456"), ErrTwoFactorUnavailable)
}
