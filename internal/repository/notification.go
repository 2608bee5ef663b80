package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pinboard/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, userID, actorID int64, notifType string, pinID, commentID *int64) error {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, pin_id, comment_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, actorID, notifType, pinID, commentID); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// List returns the user's most recent notifications with actor info, plus
// the total unread count for the badge.
func (r *notificationRepository) List(ctx context.Context, userID int64, limit int) ([]model.Notification, int, error) {
	query := `
		SELECT n.id, n.user_id, n.actor_id, n.type, n.pin_id, n.comment_id, n.is_read, n.created_at,
		       u.id AS "actor.id", u.username AS "actor.username",
		       u.first_name AS "actor.first_name", u.surname AS "actor.surname",
		       u.profile_image_url AS "actor.profile_image_url"
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`

	type notifRow struct {
		model.Notification
		ActorRow model.UserSummary `db:"actor"`
	}

	var rows []notifRow
	err := r.db.SelectContext(ctx, &rows, query, userID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		n := row.Notification
		actor := row.ActorRow
		n.Actor = &actor
		notifications[i] = n
	}

	var unread int
	err = r.db.GetContext(ctx, &unread,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}

	return notifications, unread, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	if len(notificationIDs) == 0 {
		return nil
	}

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND id = ANY($2)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, pq.Array(notificationIDs)); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}

	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}
