package models

import "time"

const (
	ChannelEmail    = "email"
	ChannelDatabase = "database"
	ChannelPush     = "push"
	ChannelSMS      = "sms"

	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	FrequencyImmediate = "immediate"
	FrequencyDigest    = "digest"

	// MaxNotificationAttempts is the retry ceiling; a notification that has
	// failed this many times is terminal.
	MaxNotificationAttempts = 3
)

type Notification struct {
	ID             int               `json:"id"`
	UserID         *int              `json:"user_id,omitempty"`
	RecipientEmail string            `json:"recipient_email,omitempty"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Data           map[string]string `json:"data,omitempty"`
	Priority       string            `json:"priority"`
	Channels       []string          `json:"channels"`
	Status         string            `json:"status"`
	Attempts       int               `json:"attempts"`
	FailureReason  *string           `json:"failure_reason,omitempty"`
	ScheduledAt    *time.Time        `json:"scheduled_at,omitempty"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

func (n *Notification) CanRetry() bool {
	return n.Status == NotificationStatusFailed && n.Attempts < MaxNotificationAttempts
}

type NotificationPreference struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	Type            string    `json:"type"`
	Enabled         bool      `json:"enabled"`
	Channels        []string  `json:"channels"`
	Frequency       string    `json:"frequency"`
	QuietHoursStart *string   `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   *string   `json:"quiet_hours_end,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InQuietHours reports whether the given clock time falls inside the
// preference's quiet window. Windows may wrap past midnight ("22:00"-"07:00").
func (p *NotificationPreference) InQuietHours(at time.Time) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	start, err := time.Parse("15:04", *p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", *p.QuietHoursEnd)
	if err != nil {
		return false
	}

	minutes := at.Hour()*60 + at.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin
	}
	return minutes >= startMin || minutes < endMin
}

// QuietHoursEndTime returns the next moment the quiet window closes,
// relative to the given time.
func (p *NotificationPreference) QuietHoursEndTime(at time.Time) time.Time {
	end, err := time.Parse("15:04", *p.QuietHoursEnd)
	if err != nil {
		return at
	}
	candidate := time.Date(at.Year(), at.Month(), at.Day(), end.Hour(), end.Minute(), 0, 0, at.Location())
	if !candidate.After(at) {
		candidate = candidate.Add(24 * time.Hour)
	}
	return candidate
}
