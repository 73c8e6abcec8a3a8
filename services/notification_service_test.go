package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmart/models"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *memNotificationStore, *recordingMailer) {
	t.Helper()
	store := newMemNotificationStore()
	mailer := &recordingMailer{}
	users := &stubUsers{user: &models.UserWithProfile{ID: 3, Email: "jo@example.com", FullName: "Jo Doe"}}
	return NewNotificationService(store, users, mailer, "en"), store, mailer
}

func TestSendNotification(t *testing.T) {
	t.Run("requires a recipient", func(t *testing.T) {
		svc, _, _ := newNotificationFixture(t)
		_, err := svc.Send(SendInput{Type: "order_update", Title: "t", Message: "m"})
		assert.ErrorIs(t, err, ErrNoRecipient)
	})

	t.Run("explicit email channel delivers immediately", func(t *testing.T) {
		svc, store, mailer := newNotificationFixture(t)

		n, err := svc.Send(SendInput{
			RecipientEmail: "guest@example.com",
			Type:           "order_update",
			Title:          "Order shipped",
			Message:        "On its way",
			Data:           map[string]string{"order_number": "ORD-1"},
			Channels:       []string{models.ChannelEmail},
		})
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusSent, n.Status)
		assert.Equal(t, 1, n.Attempts)
		assert.Equal(t, models.PriorityNormal, n.Priority)

		require.Len(t, mailer.calls, 1)
		assert.Equal(t, "order_update", mailer.calls[0].Template)
		assert.Equal(t, "guest@example.com", mailer.calls[0].To)
		assert.Equal(t, "Order shipped", mailer.calls[0].Variables["title"])
		assert.Equal(t, "ORD-1", mailer.calls[0].Variables["order_number"])

		stored, err := store.FindByID(n.ID)
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusSent, stored.Status)
	})

	t.Run("first send auto-creates the email preference", func(t *testing.T) {
		svc, store, _ := newNotificationFixture(t)
		userID := 3

		_, err := svc.Send(SendInput{UserID: &userID, Type: "order_update", Title: "t", Message: "m"})
		require.NoError(t, err)

		pref, err := store.GetPreference(3, "order_update")
		require.NoError(t, err)
		assert.True(t, pref.Enabled)
		assert.Equal(t, []string{models.ChannelEmail}, pref.Channels)
		assert.Equal(t, models.FrequencyImmediate, pref.Frequency)
	})

	t.Run("disabled preference keeps only the in-app record", func(t *testing.T) {
		svc, store, mailer := newNotificationFixture(t)
		userID := 3
		require.NoError(t, store.UpsertPreference(&models.NotificationPreference{
			UserID:    3,
			Type:      "marketing",
			Enabled:   false,
			Channels:  []string{models.ChannelEmail},
			Frequency: models.FrequencyImmediate,
		}))

		n, err := svc.Send(SendInput{UserID: &userID, Type: "marketing", Title: "Sale", Message: "20% off"})
		require.NoError(t, err)
		assert.Equal(t, []string{models.ChannelDatabase}, n.Channels)
		assert.Equal(t, models.NotificationStatusSent, n.Status)
		assert.Empty(t, mailer.calls)
	})

	t.Run("digest preference in quiet hours defers delivery", func(t *testing.T) {
		svc, store, mailer := newNotificationFixture(t)
		svc.now = func() time.Time {
			return time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
		}
		userID := 3
		start, end := "22:00", "07:00"
		require.NoError(t, store.UpsertPreference(&models.NotificationPreference{
			UserID:          3,
			Type:            "digest_news",
			Enabled:         true,
			Channels:        []string{models.ChannelEmail},
			Frequency:       models.FrequencyDigest,
			QuietHoursStart: &start,
			QuietHoursEnd:   &end,
		}))

		n, err := svc.Send(SendInput{UserID: &userID, Type: "digest_news", Title: "t", Message: "m"})
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusPending, n.Status)
		require.NotNil(t, n.ScheduledAt)
		assert.Equal(t, time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC), *n.ScheduledAt)
		assert.Empty(t, mailer.calls)
	})
}

func TestProcessNotification(t *testing.T) {
	t.Run("one successful channel marks the whole notification sent", func(t *testing.T) {
		svc, _, mailer := newNotificationFixture(t)
		mailer.err = errors.New("smtp down")
		userID := 3

		n, err := svc.Send(SendInput{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Channels: []string{models.ChannelEmail, models.ChannelDatabase},
		})
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusSent, n.Status)
		assert.Nil(t, n.FailureReason)
	})

	t.Run("all channels failing records the reasons", func(t *testing.T) {
		svc, store, mailer := newNotificationFixture(t)
		mailer.err = errors.New("smtp down")
		userID := 3

		n, err := svc.Send(SendInput{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Channels: []string{models.ChannelEmail, models.ChannelSMS},
		})
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusFailed, n.Status)
		require.NotNil(t, n.FailureReason)
		assert.Contains(t, *n.FailureReason, "email: ")
		assert.Contains(t, *n.FailureReason, "smtp down")
		assert.Contains(t, *n.FailureReason, "sms: ")

		stored, _ := store.FindByID(n.ID)
		assert.Equal(t, models.NotificationStatusFailed, stored.Status)
		assert.Equal(t, 1, stored.Attempts)
	})

	t.Run("recovery clears the failure reason", func(t *testing.T) {
		svc, _, mailer := newNotificationFixture(t)
		mailer.err = errors.New("smtp down")
		userID := 3

		n, err := svc.Send(SendInput{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Channels: []string{models.ChannelEmail},
		})
		require.NoError(t, err)
		require.Equal(t, models.NotificationStatusFailed, n.Status)

		mailer.err = nil
		require.NoError(t, svc.ProcessNotification(n))
		assert.Equal(t, models.NotificationStatusSent, n.Status)
		assert.Nil(t, n.FailureReason)
		assert.Equal(t, 2, n.Attempts)
	})
}

func TestRetry(t *testing.T) {
	failedNotification := func(t *testing.T, svc *NotificationService, mailer *recordingMailer) *models.Notification {
		t.Helper()
		mailer.err = errors.New("smtp down")
		userID := 3
		n, err := svc.Send(SendInput{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Channels: []string{models.ChannelEmail},
		})
		require.NoError(t, err)
		require.Equal(t, models.NotificationStatusFailed, n.Status)
		return n
	}

	t.Run("single retry succeeds once the mailer recovers", func(t *testing.T) {
		svc, _, mailer := newNotificationFixture(t)
		n := failedNotification(t, svc, mailer)

		mailer.err = nil
		retried, err := svc.Retry(n.ID)
		require.NoError(t, err)
		assert.Equal(t, models.NotificationStatusSent, retried.Status)
	})

	t.Run("attempt ceiling is enforced", func(t *testing.T) {
		svc, store, mailer := newNotificationFixture(t)
		n := failedNotification(t, svc, mailer)

		for n.Attempts < models.MaxNotificationAttempts {
			_, err := svc.Retry(n.ID)
			require.NoError(t, err)
			n, _ = store.FindByID(n.ID)
		}

		_, err := svc.Retry(n.ID)
		assert.ErrorIs(t, err, ErrRetryLimitReached)
	})

	t.Run("RetryFailed sweeps every retryable failure", func(t *testing.T) {
		svc, _, mailer := newNotificationFixture(t)
		failedNotification(t, svc, mailer)
		failedNotification(t, svc, mailer)

		mailer.err = nil
		retried, sent, err := svc.RetryFailed()
		require.NoError(t, err)
		assert.Equal(t, 2, retried)
		assert.Equal(t, 2, sent)
	})
}

func TestProcessPending(t *testing.T) {
	svc, store, _ := newNotificationFixture(t)
	userID := 3

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(&models.Notification{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Priority: models.PriorityNormal,
			Channels: []string{models.ChannelDatabase},
			Status:   models.NotificationStatusPending,
		}))
	}
	future := time.Now().Add(time.Hour)
	require.NoError(t, store.Insert(&models.Notification{
		UserID:      &userID,
		Type:        "order_update",
		Title:       "later",
		Message:     "m",
		Priority:    models.PriorityNormal,
		Channels:    []string{models.ChannelDatabase},
		Status:      models.NotificationStatusPending,
		ScheduledAt: &future,
	}))

	sent, err := svc.ProcessPending(10)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestMarkAsRead(t *testing.T) {
	svc, store, _ := newNotificationFixture(t)
	userID := 3
	n := &models.Notification{
		UserID:   &userID,
		Type:     "order_update",
		Title:    "t",
		Message:  "m",
		Channels: []string{models.ChannelDatabase},
		Status:   models.NotificationStatusSent,
	}
	require.NoError(t, store.Insert(n))

	require.NoError(t, svc.MarkAsRead(n.ID, 3))
	stored, _ := store.FindByID(n.ID)
	require.NotNil(t, stored.ReadAt)
	firstRead := *stored.ReadAt

	// Repeating the call must not move the timestamp.
	require.NoError(t, svc.MarkAsRead(n.ID, 3))
	stored, _ = store.FindByID(n.ID)
	assert.Equal(t, firstRead, *stored.ReadAt)

	t.Run("another user's notification stays unread", func(t *testing.T) {
		other := &models.Notification{
			UserID:   &userID,
			Type:     "order_update",
			Title:    "t",
			Message:  "m",
			Channels: []string{models.ChannelDatabase},
			Status:   models.NotificationStatusSent,
		}
		require.NoError(t, store.Insert(other))

		require.NoError(t, svc.MarkAsRead(other.ID, 99))
		stored, _ := store.FindByID(other.ID)
		assert.Nil(t, stored.ReadAt)
	})
}

func TestSendBulk(t *testing.T) {
	svc, store, mailer := newNotificationFixture(t)
	require.NoError(t, store.UpsertPreference(&models.NotificationPreference{
		UserID:    2,
		Type:      "announcement",
		Enabled:   false,
		Channels:  []string{models.ChannelEmail},
		Frequency: models.FrequencyImmediate,
	}))

	sent, err := svc.SendBulk([]int{1, 2, 3}, SendInput{
		Type:    "announcement",
		Title:   "Maintenance",
		Message: "Down at midnight",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	// User 2 opted out of email; only the other two reach the mailer.
	assert.Len(t, mailer.calls, 2)
	assert.Len(t, store.notifications, 3)
}

func TestUpdatePreference(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	enabled := true
	start, end := "22:00", "07:00"

	pref, err := svc.UpdatePreference(3, models.UpdatePreferenceRequest{
		Type:            "order_update",
		Enabled:         &enabled,
		Channels:        []string{models.ChannelDatabase, models.ChannelEmail},
		Frequency:       models.FrequencyDigest,
		QuietHoursStart: &start,
		QuietHoursEnd:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ChannelDatabase, models.ChannelEmail}, pref.Channels)
	assert.Equal(t, models.FrequencyDigest, pref.Frequency)
	require.NotNil(t, pref.QuietHoursStart)
	assert.Equal(t, "22:00", *pref.QuietHoursStart)

	prefs, err := svc.GetPreferences(3)
	require.NoError(t, err)
	assert.Len(t, prefs, 1)
}
