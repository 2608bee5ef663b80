package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pinboard/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `id, pin_id, user_id, text, image_url, parent_comment_id, like_count, created_at`

// Create inserts the comment and bumps the pin's comment counter in the
// same transaction. Replies count toward the pin's counter too.
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO comments (pin_id, user_id, text, image_url, parent_comment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, like_count, created_at
	`, comment.PinID, comment.UserID, comment.Text, comment.ImageURL, comment.ParentCommentID)

	if err := row.Scan(&comment.ID, &comment.LikeCount, &comment.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pins SET comment_count = comment_count + 1, updated_at = NOW() WHERE id = $1`,
		comment.PinID); err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

// Update edits the comment text. Only the author may edit.
func (r *commentRepository) Update(ctx context.Context, commentID, userID int64, text string) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET text = $1
		WHERE id = $2 AND user_id = $3
		RETURNING ` + commentColumns

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, text, commentID, userID)
	if err == sql.ErrNoRows {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
		if exists {
			return nil, model.ErrNotCommentOwner
		}
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return &comment, nil
}

// Delete removes the comment and decrements the pin's counter by the
// number of rows removed (the comment plus its cascaded replies).
func (r *commentRepository) Delete(ctx context.Context, commentID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var comment struct {
		PinID  int64 `db:"pin_id"`
		UserID int64 `db:"user_id"`
	}
	err = tx.GetContext(ctx, &comment,
		`SELECT pin_id, user_id FROM comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return model.ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}
	if comment.UserID != userID {
		return model.ErrNotCommentOwner
	}

	var removed int
	err = tx.GetContext(ctx, &removed, `
		SELECT COUNT(*) FROM comments
		WHERE id = $1 OR parent_comment_id = $1
	`, commentID)
	if err != nil {
		return fmt.Errorf("count comment tree: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pins SET comment_count = comment_count - $1, updated_at = NOW() WHERE id = $2`,
		removed, comment.PinID); err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByPinID returns top-level comments for a pin, newest first, with
// compound cursor pagination. Replies are fetched separately.
func (r *commentRepository) GetByPinID(ctx context.Context, pinID int64, cursor *string, limit int) ([]model.Comment, *string, error) {
	var query string
	var args []interface{}

	base := `SELECT ` + commentColumns + `
		FROM comments
		WHERE pin_id = $1 AND parent_comment_id IS NULL`

	if cursor == nil {
		query = base + ` ORDER BY created_at DESC, id DESC LIMIT $2`
		args = []interface{}{pinID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = base + ` AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC LIMIT $4`
		args = []interface{}{pinID, ts, id, limit + 1}
	}

	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("get comments: %w", err)
	}

	var nextCursor *string
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return comments, nextCursor, nil
}

// GetReplies returns a comment's replies, oldest first (conversation order).
func (r *commentRepository) GetReplies(ctx context.Context, parentCommentID int64) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments
		WHERE parent_comment_id = $1
		ORDER BY created_at`

	var replies []model.Comment
	err := r.db.SelectContext(ctx, &replies, query, parentCommentID)
	if err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}

	return replies, nil
}

// ToggleLike adds or removes the user's like on a comment, keeping the
// membership row and counter in one transaction.
func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO comment_likes (comment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("insert comment like: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	delta := 1
	liked := true
	if inserted == 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`,
			commentID, userID); err != nil {
			return false, fmt.Errorf("delete comment like: %w", err)
		}
		delta = -1
		liked = false
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE comments SET like_count = like_count + $1 WHERE id = $2`,
		delta, commentID)
	if err != nil {
		return false, fmt.Errorf("update like count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return false, model.ErrCommentNotFound
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, nil
}
