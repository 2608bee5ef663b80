package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pinboard/internal/cache"
	"pinboard/internal/model"
)

type pinRepository struct {
	db *sqlx.DB
}

func NewPinRepository(db *sqlx.DB) PinRepository {
	return &pinRepository{db: db}
}

const pinColumns = `id, title, description, file_id, file_url, file_type, user_id, category,
	       tags, like_count, save_count, comment_count, created_at, updated_at`

// Create inserts a new pin in a transaction so the row and the owner's
// relation stay consistent.
func (r *pinRepository) Create(ctx context.Context, pin *model.Pin) error {
	query := `
		INSERT INTO pins (title, description, file_id, file_url, file_type, user_id, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, like_count, save_count, comment_count, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		pin.Title,
		pin.Description,
		pin.FileID,
		pin.FileURL,
		pin.FileType,
		pin.UserID,
		pin.Category,
		pin.Tags,
	)

	err := row.Scan(
		&pin.ID,
		&pin.LikeCount,
		&pin.SaveCount,
		&pin.CommentCount,
		&pin.CreatedAt,
		&pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pin: %w", err)
	}

	return nil
}

func (r *pinRepository) GetByID(ctx context.Context, pinID int64) (*model.Pin, error) {
	query := `SELECT ` + pinColumns + ` FROM pins WHERE id = $1`

	var pin model.Pin
	err := r.db.GetContext(ctx, &pin, query, pinID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pin: %w", err)
	}

	return &pin, nil
}

// GetByIDs retrieves multiple pins, preserving the input order.
// Used for hydrating the home feed from cache.
func (r *pinRepository) GetByIDs(ctx context.Context, pinIDs []int64) ([]model.Pin, error) {
	if len(pinIDs) == 0 {
		return []model.Pin{}, nil
	}

	query := `SELECT ` + pinColumns + ` FROM pins WHERE id = ANY($1)`
	var pins []model.Pin
	err := r.db.SelectContext(ctx, &pins, query, pq.Array(pinIDs))
	if err != nil {
		return nil, fmt.Errorf("get pins by ids: %w", err)
	}

	// Re-order to match input order (important for feed ordering)
	pinsMap := make(map[int64]model.Pin, len(pins))
	for _, p := range pins {
		pinsMap[p.ID] = p
	}
	ordered := make([]model.Pin, 0, len(pinIDs))
	for _, id := range pinIDs {
		if p, ok := pinsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// Update applies a partial metadata update. Only the owner may update.
func (r *pinRepository) Update(ctx context.Context, pinID, userID int64, req model.UpdatePinRequest) (*model.Pin, error) {
	var tags interface{}
	if req.Tags != nil {
		tags = pq.StringArray(req.Tags)
	}

	query := `
		UPDATE pins
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    category = COALESCE($3, category),
		    tags = COALESCE($4, tags),
		    updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING ` + pinColumns

	var pin model.Pin
	err := r.db.GetContext(ctx, &pin, query, req.Title, req.Description, req.Category, tags, pinID, userID)
	if err == sql.ErrNoRows {
		// Distinguish missing pin from foreign pin
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM pins WHERE id = $1)`, pinID)
		if exists {
			return nil, model.ErrNotPinOwner
		}
		return nil, model.ErrPinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update pin: %w", err)
	}

	return &pin, nil
}

// Delete removes a pin. Only the owner may delete; saves, likes, comments
// and board placements cascade at the database level.
func (r *pinRepository) Delete(ctx context.Context, pinID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pins WHERE id = $1 AND user_id = $2`, pinID, userID)
	if err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM pins WHERE id = $1)`, pinID)
		if exists {
			return model.ErrNotPinOwner
		}
		return model.ErrPinNotFound
	}

	return nil
}

// Exists checks if a pin exists.
func (r *pinRepository) Exists(ctx context.Context, pinID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM pins WHERE id = $1)`, pinID)
	if err != nil {
		return false, fmt.Errorf("check pin exists: %w", err)
	}
	return exists, nil
}

// GetAuthorID returns the creator of a pin (for event publishing).
func (r *pinRepository) GetAuthorID(ctx context.Context, pinID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM pins WHERE id = $1`, pinID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPinNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// ToggleLike adds or removes the user's like depending on current
// membership. The membership row and the like counter commit in the same
// transaction, so two consecutive calls always restore the original state.
func (r *pinRepository) ToggleLike(ctx context.Context, pinID, userID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO pin_likes (pin_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (pin_id, user_id) DO NOTHING
	`, pinID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	delta := 1
	liked := true
	if inserted == 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM pin_likes WHERE pin_id = $1 AND user_id = $2`, pinID, userID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		delta = -1
		liked = false
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE pins SET like_count = like_count + $1, updated_at = NOW() WHERE id = $2`,
		delta, pinID)
	if err != nil {
		return false, fmt.Errorf("update like count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return false, model.ErrPinNotFound
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, nil
}

// Save files the pin under the user's saved pins and optionally appends it
// to a board. All writes (save row, board placement, save counter) commit
// in one transaction; a failing half rolls back the whole operation.
func (r *pinRepository) Save(ctx context.Context, pinID, userID int64, boardID *int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO pin_saves (pin_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (pin_id, user_id) DO NOTHING
	`, pinID, userID)
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if inserted == 0 {
		return model.ErrAlreadySaved
	}

	if boardID != nil {
		// The board must exist and the user must be its owner or a
		// collaborator before the pin is filed under it.
		var usable bool
		err := tx.GetContext(ctx, &usable, `
			SELECT EXISTS(
				SELECT 1 FROM boards b
				LEFT JOIN board_collaborators bc ON bc.board_id = b.id AND bc.user_id = $2
				WHERE b.id = $1 AND (b.user_id = $2 OR bc.user_id IS NOT NULL)
			)
		`, *boardID, userID)
		if err != nil {
			return fmt.Errorf("check board usable: %w", err)
		}
		if !usable {
			return model.ErrBoardNotUsable
		}

		// Append at the end of the board's ordered pin list.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO board_pins (board_id, pin_id, position)
			VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM board_pins WHERE board_id = $1), 0))
			ON CONFLICT (board_id, pin_id) DO NOTHING
		`, *boardID, pinID); err != nil {
			return fmt.Errorf("append pin to board: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pins SET save_count = save_count + 1, updated_at = NOW() WHERE id = $1`,
		pinID); err != nil {
		return fmt.Errorf("update save count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetCreatedByUser returns the user's created pins, newest first, with
// compound cursor pagination (created_at, id).
func (r *pinRepository) GetCreatedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `SELECT ` + pinColumns + `
			FROM pins
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`
		args = []interface{}{userID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `SELECT ` + pinColumns + `
			FROM pins
			WHERE user_id = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4`
		args = []interface{}{userID, ts, id, limit + 1}
	}

	var pins []model.Pin
	err := r.db.SelectContext(ctx, &pins, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("get created pins: %w", err)
	}

	var nextCursor *string
	if len(pins) > limit {
		pins = pins[:limit]
		last := pins[len(pins)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return pins, nextCursor, nil
}

// GetSavedByUser returns the user's saved pins ordered by save time,
// newest first.
func (r *pinRepository) GetSavedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error) {
	var query string
	var args []interface{}

	base := `SELECT p.id, p.title, p.description, p.file_id, p.file_url, p.file_type,
		       p.user_id, p.category, p.tags, p.like_count, p.save_count, p.comment_count,
		       p.created_at, p.updated_at
		FROM pin_saves s
		JOIN pins p ON p.id = s.pin_id
		WHERE s.user_id = $1`

	if cursor == nil {
		query = base + ` ORDER BY s.created_at DESC, s.pin_id DESC LIMIT $2`
		args = []interface{}{userID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = base + ` AND (s.created_at, s.pin_id) < ($2, $3)
			ORDER BY s.created_at DESC, s.pin_id DESC LIMIT $4`
		args = []interface{}{userID, ts, id, limit + 1}
	}

	var pins []model.Pin
	err := r.db.SelectContext(ctx, &pins, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("get saved pins: %w", err)
	}

	var nextCursor *string
	if len(pins) > limit {
		pins = pins[:limit]
		last := pins[len(pins)-1]
		// The cursor tracks the save time, not the pin's created_at.
		var savedAt time.Time
		err := r.db.GetContext(ctx, &savedAt,
			`SELECT created_at FROM pin_saves WHERE user_id = $1 AND pin_id = $2`,
			userID, last.ID)
		if err == nil {
			c := formatCursor(savedAt, last.ID)
			nextCursor = &c
		}
	}

	return pins, nextCursor, nil
}

// CheckLikes batch-checks which pins the user has liked.
func (r *pinRepository) CheckLikes(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error) {
	return r.checkMembership(ctx, `SELECT pin_id FROM pin_likes WHERE user_id = $1 AND pin_id = ANY($2)`, userID, pinIDs)
}

// CheckSaves batch-checks which pins the user has saved.
func (r *pinRepository) CheckSaves(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error) {
	return r.checkMembership(ctx, `SELECT pin_id FROM pin_saves WHERE user_id = $1 AND pin_id = ANY($2)`, userID, pinIDs)
}

func (r *pinRepository) checkMembership(ctx context.Context, query string, userID int64, pinIDs []int64) (map[int64]bool, error) {
	if len(pinIDs) == 0 {
		return make(map[int64]bool), nil
	}

	var matchedIDs []int64
	err := r.db.SelectContext(ctx, &matchedIDs, query, userID, pq.Array(pinIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range pinIDs {
		result[id] = false
	}
	for _, id := range matchedIDs {
		result[id] = true
	}

	return result, nil
}

// GetRecentPinsByUser returns recent pins by a user (for follow backfill).
func (r *pinRepository) GetRecentPinsByUser(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint as timestamp
		FROM pins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.pinScores(ctx, query, userID, limit)
}

// GetHomeFeedPinIDs returns pin IDs from all followees for cache warming.
func (r *pinRepository) GetHomeFeedPinIDs(ctx context.Context, followeeIDs []int64, limit int) ([]cache.PinScore, error) {
	if len(followeeIDs) == 0 {
		return []cache.PinScore{}, nil
	}

	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint as timestamp
		FROM pins
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.pinScores(ctx, query, pq.Array(followeeIDs), limit)
}

func (r *pinRepository) pinScores(ctx context.Context, query string, owner interface{}, limit int) ([]cache.PinScore, error) {
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("get pin scores: %w", err)
	}

	pins := make([]cache.PinScore, len(rows))
	for i, r := range rows {
		pins[i] = cache.PinScore{PinID: r.ID, Timestamp: r.Timestamp}
	}
	return pins, nil
}

// Helper: parse compound cursor "id:timestamp"
func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	var id int64
	var ts int64
	_, err := fmt.Sscanf(parts[0], "%d", &id)
	if err != nil {
		return time.Time{}, 0, err
	}
	_, err = fmt.Sscanf(parts[1], "%d", &ts)
	if err != nil {
		return time.Time{}, 0, err
	}
	return time.Unix(ts, 0), id, nil
}

// Helper: format compound cursor "id:timestamp"
func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.Unix())
}
