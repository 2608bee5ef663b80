package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pinboard/internal/model"
)

type boardRepository struct {
	db *sqlx.DB
}

func NewBoardRepository(db *sqlx.DB) BoardRepository {
	return &boardRepository{db: db}
}

const boardColumns = `id, title, description, user_id, category, tags, is_secret, created_at, updated_at`

// Create inserts the board and its collaborator rows in one transaction.
func (r *boardRepository) Create(ctx context.Context, board *model.Board, collaboratorIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO boards (title, description, user_id, category, tags, is_secret)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, board.Title, board.Description, board.UserID, board.Category, board.Tags, board.IsSecret)

	if err := row.Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt); err != nil {
		return fmt.Errorf("insert board: %w", err)
	}

	for _, userID := range collaboratorIDs {
		if userID == board.UserID {
			continue // the owner is never a collaborator of their own board
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO board_collaborators (board_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, board.ID, userID); err != nil {
			return fmt.Errorf("insert collaborator: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, boardID int64) (*model.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

	var board model.Board
	err := r.db.GetContext(ctx, &board, query, boardID)
	if err == sql.ErrNoRows {
		return nil, model.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}

	return &board, nil
}

// GetPins returns the board's pins in board order (position ascending).
func (r *boardRepository) GetPins(ctx context.Context, boardID int64) ([]model.Pin, error) {
	query := `
		SELECT p.id, p.title, p.description, p.file_id, p.file_url, p.file_type,
		       p.user_id, p.category, p.tags, p.like_count, p.save_count, p.comment_count,
		       p.created_at, p.updated_at
		FROM board_pins bp
		JOIN pins p ON p.id = bp.pin_id
		WHERE bp.board_id = $1
		ORDER BY bp.position
	`

	var pins []model.Pin
	err := r.db.SelectContext(ctx, &pins, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board pins: %w", err)
	}
	if pins == nil {
		pins = []model.Pin{}
	}

	return pins, nil
}

func (r *boardRepository) GetCollaborators(ctx context.Context, boardID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.surname, u.profile_image_url
		FROM board_collaborators bc
		JOIN users u ON u.id = bc.user_id
		WHERE bc.board_id = $1
		ORDER BY u.username
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("get collaborators: %w", err)
	}

	return users, nil
}

// Update applies a partial metadata update and, when a collaborator list is
// provided, replaces the collaborator set. Ownership is checked by the
// service layer before this is called.
func (r *boardRepository) Update(ctx context.Context, boardID int64, req model.UpdateBoardRequest) (*model.Board, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tags interface{}
	if req.Tags != nil {
		tags = pq.StringArray(req.Tags)
	}

	query := `
		UPDATE boards
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    category = COALESCE($3, category),
		    tags = COALESCE($4, tags),
		    is_secret = COALESCE($5, is_secret),
		    updated_at = NOW()
		WHERE id = $6
		RETURNING ` + boardColumns

	var board model.Board
	err = tx.GetContext(ctx, &board, query, req.Title, req.Description, req.Category, tags, req.IsSecret, boardID)
	if err == sql.ErrNoRows {
		return nil, model.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}

	if req.Collaborators != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM board_collaborators WHERE board_id = $1`, boardID); err != nil {
			return nil, fmt.Errorf("clear collaborators: %w", err)
		}
		for _, userID := range req.Collaborators {
			if userID == board.UserID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO board_collaborators (board_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, boardID, userID); err != nil {
				return nil, fmt.Errorf("insert collaborator: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &board, nil
}

// Delete removes the board if the user owns it. Saved pins survive: only
// the board and its placements go away.
func (r *boardRepository) Delete(ctx context.Context, boardID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM boards WHERE id = $1 AND user_id = $2`, boardID, userID)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM boards WHERE id = $1)`, boardID)
		if exists {
			return model.ErrNotBoardOwner
		}
		return model.ErrBoardNotFound
	}

	return nil
}

// GetByUser lists a user's boards, newest first. With publicOnly set,
// secret boards are filtered out (viewer is not the owner).
func (r *boardRepository) GetByUser(ctx context.Context, userID int64, publicOnly bool) ([]model.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE user_id = $1`
	if publicOnly {
		query += ` AND is_secret = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	var boards []model.Board
	err := r.db.SelectContext(ctx, &boards, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get boards by user: %w", err)
	}
	if boards == nil {
		boards = []model.Board{}
	}

	return boards, nil
}
