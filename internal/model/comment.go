package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a pin. A reply is a comment with a
// parent; replies hang off their parent and never appear in the pin's
// top-level comment list.
type Comment struct {
	ID              int64     `db:"id" json:"id"`
	PinID           int64     `db:"pin_id" json:"pin_id"`
	UserID          int64     `db:"user_id" json:"-"`
	Text            string    `db:"text" json:"text"`
	ImageURL        *string   `db:"image_url" json:"image_url,omitempty"`
	ParentCommentID *int64    `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	LikeCount       int       `db:"like_count" json:"like_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// Joined fields
	Author  *UserSummary `json:"author,omitempty"`
	Replies []Comment    `json:"replies,omitempty"`
}

// CreateCommentRequest is the request body for commenting or replying.
type CreateCommentRequest struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url"`
}

// CommentListResponse is the paginated top-level comment list for a pin.
type CommentListResponse struct {
	Comments   []Comment `json:"comments"`
	NextCursor *string   `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

// Comment constraints
const (
	MaxCommentTextLength = 300
)

// Validate checks comment fields.
func (r *CreateCommentRequest) Validate() error {
	var v FieldCollector
	if len(r.Text) == 0 || len(r.Text) > MaxCommentTextLength {
		v.Add("text")
	}
	return v.Err()
}

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrCommentWrongPin = errors.New("comment does not belong to this pin")
)
