package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Board is a named, ordered collection of pins owned by one user.
type Board struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Category    string         `db:"category" json:"category"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	IsSecret    bool           `db:"is_secret" json:"is_secret"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	// Joined fields (not in boards table)
	Pins          []Pin         `json:"pins,omitempty"`
	Owner         *UserSummary  `json:"owner,omitempty"`
	Collaborators []UserSummary `json:"collaborators,omitempty"`
}

// CreateBoardRequest is the request body for creating a board.
type CreateBoardRequest struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Collaborators []int64  `json:"collaborators"`
	IsSecret      bool     `json:"is_secret"`
}

// UpdateBoardRequest carries partial board updates; nil fields keep their
// current values.
type UpdateBoardRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Tags          []string `json:"tags"`
	Collaborators []int64  `json:"collaborators"`
	IsSecret      *bool    `json:"is_secret"`
}

// Board field constraints
const (
	MinBoardTitleLength       = 1
	MaxBoardTitleLength       = 100
	MaxBoardDescriptionLength = 500
)

// Validate checks board creation fields.
func (r *CreateBoardRequest) Validate() error {
	var v FieldCollector
	if len(r.Title) < MinBoardTitleLength || len(r.Title) > MaxBoardTitleLength {
		v.Add("title")
	}
	if r.Description != nil && len(*r.Description) > MaxBoardDescriptionLength {
		v.Add("description")
	}
	if r.Category == "" {
		r.Category = CategoryOther
	}
	if !IsAllowedCategory(r.Category) {
		v.Add("category")
	}
	return v.Err()
}

// Validate checks board update fields.
func (r *UpdateBoardRequest) Validate() error {
	var v FieldCollector
	if r.Title != nil && (len(*r.Title) < MinBoardTitleLength || len(*r.Title) > MaxBoardTitleLength) {
		v.Add("title")
	}
	if r.Description != nil && len(*r.Description) > MaxBoardDescriptionLength {
		v.Add("description")
	}
	if r.Category != nil && !IsAllowedCategory(*r.Category) {
		v.Add("category")
	}
	return v.Err()
}

// Board errors
var (
	ErrBoardNotFound = errors.New("board not found")
	ErrNotBoardOwner = errors.New("not the owner of this board")
	ErrBoardSecret   = errors.New("this board is secret")
)
