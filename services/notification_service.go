package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shopmart/models"
	"shopmart/repositories"
)

var (
	ErrNoRecipient       = errors.New("notification has no user id or recipient email")
	ErrRetryLimitReached = errors.New("notification retry limit reached")
)

type NotificationStore interface {
	Insert(n *models.Notification) error
	InsertBatch(notifications []*models.Notification) error
	FindByID(id int) (*models.Notification, error)
	FindByUser(userID, page, limit int, unreadOnly bool) ([]models.Notification, int, error)
	FindPending(batchSize int) ([]models.Notification, error)
	FindFailedRetryable() ([]models.Notification, error)
	UpdateDeliveryState(n *models.Notification) error
	MarkRead(id, userID int) (bool, error)
	MarkManyRead(ids []int, userID int) (int, error)
	MarkAllRead(userID int) (int, error)
	DeleteOld(cutoff time.Time) (int, error)
	GetPreference(userID int, notificationType string) (*models.NotificationPreference, error)
	ListPreferences(userID int) ([]models.NotificationPreference, error)
	UpsertPreference(p *models.NotificationPreference) error
}

type NotificationService struct {
	store  NotificationStore
	users  RecipientLookup
	mailer Mailer
	locale string
	now    func() time.Time
}

func NewNotificationService(store NotificationStore, users RecipientLookup, mailer Mailer, locale string) *NotificationService {
	return &NotificationService{
		store:  store,
		users:  users,
		mailer: mailer,
		locale: locale,
		now:    time.Now,
	}
}

// SendInput is everything needed to create one notification. Channels may be
// left empty to have them resolved from the recipient's preference.
type SendInput struct {
	UserID         *int
	RecipientEmail string
	Type           string
	Title          string
	Message        string
	Data           map[string]string
	Priority       string
	Channels       []string
	ScheduledAt    *time.Time
}

// Send persists the notification and, unless it is scheduled for later,
// dispatches it immediately. The channel list is fixed at creation: either
// the explicit list, or the user's preference for this type (auto-created
// with the email default when absent).
func (s *NotificationService) Send(in SendInput) (*models.Notification, error) {
	if in.UserID == nil && in.RecipientEmail == "" {
		return nil, ErrNoRecipient
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	channels := in.Channels
	scheduledAt := in.ScheduledAt
	if len(channels) == 0 && in.UserID != nil {
		pref, err := s.resolvePreference(*in.UserID, in.Type)
		if err != nil {
			return nil, err
		}
		if pref.Enabled {
			channels = pref.Channels
		} else {
			// A disabled preference keeps the in-app record but suppresses
			// every outbound channel.
			channels = []string{models.ChannelDatabase}
		}
		if scheduledAt == nil && pref.Frequency == models.FrequencyDigest && pref.InQuietHours(s.now()) {
			deferred := pref.QuietHoursEndTime(s.now())
			scheduledAt = &deferred
		}
	}
	if len(channels) == 0 {
		channels = []string{models.ChannelEmail}
	}

	n := &models.Notification{
		UserID:         in.UserID,
		RecipientEmail: in.RecipientEmail,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		Data:           in.Data,
		Priority:       in.Priority,
		Channels:       channels,
		Status:         models.NotificationStatusPending,
		ScheduledAt:    scheduledAt,
	}
	if err := s.store.Insert(n); err != nil {
		return nil, err
	}

	if scheduledAt == nil || !scheduledAt.After(s.now()) {
		if err := s.ProcessNotification(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (s *NotificationService) resolvePreference(userID int, notificationType string) (*models.NotificationPreference, error) {
	pref, err := s.store.GetPreference(userID, notificationType)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, repositories.ErrPreferenceNotFound) {
		return nil, err
	}

	pref = &models.NotificationPreference{
		UserID:    userID,
		Type:      notificationType,
		Enabled:   true,
		Channels:  []string{models.ChannelEmail},
		Frequency: models.FrequencyImmediate,
	}
	if err := s.store.UpsertPreference(pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// ProcessNotification attempts delivery on every channel of the notification.
// One successful channel marks the whole notification sent; only when every
// channel fails does it become failed, with the reasons recorded.
func (s *NotificationService) ProcessNotification(n *models.Notification) error {
	n.Attempts++

	var failures []string
	delivered := false
	for _, channel := range n.Channels {
		if err := s.deliver(channel, n); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", channel, err))
			continue
		}
		delivered = true
	}

	if delivered {
		n.Status = models.NotificationStatusSent
		n.FailureReason = nil
	} else {
		n.Status = models.NotificationStatusFailed
		reason := strings.Join(failures, "; ")
		n.FailureReason = &reason
	}

	return s.store.UpdateDeliveryState(n)
}

func (s *NotificationService) deliver(channel string, n *models.Notification) error {
	switch channel {
	case models.ChannelDatabase:
		// The persisted row is the in-app notification; nothing to do.
		return nil
	case models.ChannelEmail:
		recipient := n.RecipientEmail
		if recipient == "" && n.UserID != nil {
			user, err := s.users.GetUserWithProfile(*n.UserID)
			if err != nil {
				return fmt.Errorf("recipient lookup failed: %w", err)
			}
			recipient = user.Email
		}
		if recipient == "" {
			return ErrNoRecipient
		}

		variables := map[string]string{
			"title":   n.Title,
			"message": n.Message,
		}
		for k, v := range n.Data {
			variables[k] = v
		}
		return s.mailer.SendTemplate(n.Type, s.locale, recipient, variables)
	case models.ChannelPush:
		// Declared but unimplemented; kept so preferences can already opt in.
		return errors.New("push channel not configured")
	case models.ChannelSMS:
		return errors.New("sms channel not configured")
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

// SendBulk creates the same notification for many users inside a single
// transaction; creation is all-or-nothing, delivery is per user and
// independent.
func (s *NotificationService) SendBulk(userIDs []int, in SendInput) (int, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	notifications := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		uid := userID
		pref, err := s.resolvePreference(uid, in.Type)
		if err != nil {
			return 0, err
		}
		channels := in.Channels
		if len(channels) == 0 {
			channels = pref.Channels
			if !pref.Enabled {
				channels = []string{models.ChannelDatabase}
			}
		}
		notifications = append(notifications, &models.Notification{
			UserID:      &uid,
			Type:        in.Type,
			Title:       in.Title,
			Message:     in.Message,
			Data:        in.Data,
			Priority:    in.Priority,
			Channels:    channels,
			Status:      models.NotificationStatusPending,
			ScheduledAt: in.ScheduledAt,
		})
	}

	if err := s.store.InsertBatch(notifications); err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range notifications {
		if n.ScheduledAt != nil && n.ScheduledAt.After(s.now()) {
			continue
		}
		if err := s.ProcessNotification(n); err != nil {
			log.Printf("bulk notification %d: %v", n.ID, err)
			continue
		}
		if n.Status == models.NotificationStatusSent {
			sent++
		}
	}
	return sent, nil
}

func (s *NotificationService) MarkAsRead(id, userID int) error {
	// A repeated call finds read_at already set and changes nothing.
	_, err := s.store.MarkRead(id, userID)
	return err
}

func (s *NotificationService) MarkManyAsRead(ids []int, userID int) (int, error) {
	return s.store.MarkManyRead(ids, userID)
}

func (s *NotificationService) MarkAllAsRead(userID int) (int, error) {
	return s.store.MarkAllRead(userID)
}

func (s *NotificationService) GetUserNotifications(userID, page, limit int, unreadOnly bool) ([]models.Notification, int, error) {
	return s.store.FindByUser(userID, page, limit, unreadOnly)
}

// ProcessPending dispatches due pending notifications, highest priority
// first, and returns how many were successfully sent. Intended to be run
// from cron via the tasks CLI.
func (s *NotificationService) ProcessPending(batchSize int) (int, error) {
	pending, err := s.store.FindPending(batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		n := &pending[i]
		if err := s.ProcessNotification(n); err != nil {
			log.Printf("notification %d: %v", n.ID, err)
			continue
		}
		if n.Status == models.NotificationStatusSent {
			sent++
		}
	}
	return sent, nil
}

// RetryFailed re-dispatches failed notifications still under the attempt
// ceiling. Retries are always triggered externally, never automatically.
func (s *NotificationService) RetryFailed() (retried, sent int, err error) {
	failed, err := s.store.FindFailedRetryable()
	if err != nil {
		return 0, 0, err
	}

	for i := range failed {
		n := &failed[i]
		if !n.CanRetry() {
			continue
		}
		retried++
		if err := s.ProcessNotification(n); err != nil {
			log.Printf("notification %d retry: %v", n.ID, err)
			continue
		}
		if n.Status == models.NotificationStatusSent {
			sent++
		}
	}
	return retried, sent, nil
}

// Retry re-dispatches a single failed notification, for the admin screen.
func (s *NotificationService) Retry(id int) (*models.Notification, error) {
	n, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !n.CanRetry() {
		return nil, ErrRetryLimitReached
	}
	if err := s.ProcessNotification(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) Cleanup(daysOld int) (int, error) {
	cutoff := s.now().AddDate(0, 0, -daysOld)
	return s.store.DeleteOld(cutoff)
}

func (s *NotificationService) GetPreferences(userID int) ([]models.NotificationPreference, error) {
	return s.store.ListPreferences(userID)
}

func (s *NotificationService) UpdatePreference(userID int, req models.UpdatePreferenceRequest) (*models.NotificationPreference, error) {
	pref, err := s.resolvePreference(userID, req.Type)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		pref.Enabled = *req.Enabled
	}
	if len(req.Channels) > 0 {
		pref.Channels = req.Channels
	}
	if req.Frequency != "" {
		pref.Frequency = req.Frequency
	}
	pref.QuietHoursStart = req.QuietHoursStart
	pref.QuietHoursEnd = req.QuietHoursEnd

	if err := s.store.UpsertPreference(pref); err != nil {
		return nil, err
	}
	return pref, nil
}
