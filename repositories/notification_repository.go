package repositories

import (
	"context"
	"errors"
	"time"

	"shopmart/config"
	"shopmart/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPreferenceNotFound   = errors.New("notification preference not found")
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const notificationColumns = `id, user_id, recipient_email, type, title, message,
	COALESCE(data, '{}'::jsonb), priority, channels, status, attempts, failure_reason,
	scheduled_at, read_at, created_at, updated_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.RecipientEmail, &n.Type, &n.Title, &n.Message,
		&n.Data, &n.Priority, &n.Channels, &n.Status, &n.Attempts, &n.FailureReason,
		&n.ScheduledAt, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Insert(n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, recipient_email, type, title, message, data, priority,
		                           channels, status, attempts, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		n.UserID, n.RecipientEmail, n.Type, n.Title, n.Message, n.Data, n.Priority,
		n.Channels, n.Status, n.ScheduledAt, now, now,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

// InsertBatch creates all notifications inside one transaction; any failure
// rolls the whole batch back.
func (r *NotificationRepository) InsertBatch(notifications []*models.Notification) error {
	ctx := context.Background()
	tx, err := config.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO notifications (user_id, recipient_email, type, title, message, data, priority,
		                           channels, status, attempts, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	for _, n := range notifications {
		if err := tx.QueryRow(ctx, query,
			n.UserID, n.RecipientEmail, n.Type, n.Title, n.Message, n.Data, n.Priority,
			n.Channels, n.Status, n.ScheduledAt, now, now,
		).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *NotificationRepository) FindByID(id int) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(config.DB.QueryRow(context.Background(), query, id))
}

func (r *NotificationRepository) FindByUser(userID, page, limit int, unreadOnly bool) ([]models.Notification, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)`
	var total int
	if err := config.DB.QueryRow(context.Background(), countQuery, userID, unreadOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)
	          ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := config.DB.Query(context.Background(), query, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, rows.Err()
}

// FindPending returns dispatchable notifications: pending, due now or earlier,
// highest priority first, oldest first within a priority.
func (r *NotificationRepository) FindPending(batchSize int) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE status = 'pending' AND (scheduled_at IS NULL OR scheduled_at <= NOW())
	          ORDER BY CASE priority
	              WHEN 'urgent' THEN 0
	              WHEN 'high' THEN 1
	              WHEN 'normal' THEN 2
	              ELSE 3
	          END, created_at
	          LIMIT $1`

	rows, err := config.DB.Query(context.Background(), query, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) FindFailedRetryable() ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE status = 'failed' AND attempts < $1
	          ORDER BY created_at`

	rows, err := config.DB.Query(context.Background(), query, models.MaxNotificationAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) UpdateDeliveryState(n *models.Notification) error {
	query := `UPDATE notifications SET status = $1, attempts = $2, failure_reason = $3, updated_at = $4 WHERE id = $5`
	_, err := config.DB.Exec(context.Background(), query,
		n.Status, n.Attempts, n.FailureReason, time.Now(), n.ID)
	return err
}

// MarkRead sets read_at only when it is still null, so repeated calls are
// idempotent. Returns whether a row changed.
func (r *NotificationRepository) MarkRead(id, userID int) (bool, error) {
	query := `UPDATE notifications SET read_at = NOW(), updated_at = NOW()
	          WHERE id = $1 AND user_id = $2 AND read_at IS NULL`
	tag, err := config.DB.Exec(context.Background(), query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) MarkManyRead(ids []int, userID int) (int, error) {
	query := `UPDATE notifications SET read_at = NOW(), updated_at = NOW()
	          WHERE id = ANY($1) AND user_id = $2 AND read_at IS NULL`
	tag, err := config.DB.Exec(context.Background(), query, ids, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepository) MarkAllRead(userID int) (int, error) {
	query := `UPDATE notifications SET read_at = NOW(), updated_at = NOW()
	          WHERE user_id = $1 AND read_at IS NULL`
	tag, err := config.DB.Exec(context.Background(), query, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteOld removes read notifications and terminal unreadable ones older
// than the cutoff.
func (r *NotificationRepository) DeleteOld(cutoff time.Time) (int, error) {
	query := `DELETE FROM notifications
	          WHERE created_at < $1 AND (read_at IS NOT NULL OR status <> 'pending')`
	tag, err := config.DB.Exec(context.Background(), query, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepository) GetPreference(userID int, notificationType string) (*models.NotificationPreference, error) {
	query := `SELECT id, user_id, type, enabled, channels, frequency, quiet_hours_start, quiet_hours_end, created_at, updated_at
	          FROM notification_preferences WHERE user_id = $1 AND type = $2`

	var p models.NotificationPreference
	err := config.DB.QueryRow(context.Background(), query, userID, notificationType).Scan(
		&p.ID, &p.UserID, &p.Type, &p.Enabled, &p.Channels, &p.Frequency,
		&p.QuietHoursStart, &p.QuietHoursEnd, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *NotificationRepository) ListPreferences(userID int) ([]models.NotificationPreference, error) {
	query := `SELECT id, user_id, type, enabled, channels, frequency, quiet_hours_start, quiet_hours_end, created_at, updated_at
	          FROM notification_preferences WHERE user_id = $1 ORDER BY type`

	rows, err := config.DB.Query(context.Background(), query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := []models.NotificationPreference{}
	for rows.Next() {
		var p models.NotificationPreference
		if err := rows.Scan(&p.ID, &p.UserID, &p.Type, &p.Enabled, &p.Channels, &p.Frequency,
			&p.QuietHoursStart, &p.QuietHoursEnd, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (r *NotificationRepository) UpsertPreference(p *models.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences (user_id, type, enabled, channels, frequency,
		                                      quiet_hours_start, quiet_hours_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, type) DO UPDATE
		SET enabled = EXCLUDED.enabled, channels = EXCLUDED.channels, frequency = EXCLUDED.frequency,
		    quiet_hours_start = EXCLUDED.quiet_hours_start, quiet_hours_end = EXCLUDED.quiet_hours_end,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return config.DB.QueryRow(context.Background(), query,
		p.UserID, p.Type, p.Enabled, p.Channels, p.Frequency,
		p.QuietHoursStart, p.QuietHoursEnd, now, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}
