package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Pin represents a single media post.
type Pin struct {
	ID           int64          `db:"id" json:"id"`
	Title        *string        `db:"title" json:"title"`
	Description  *string        `db:"description" json:"description"`
	FileID       string         `db:"file_id" json:"file_id"`
	FileURL      string         `db:"file_url" json:"file_url"`
	FileType     string         `db:"file_type" json:"file_type"`
	UserID       int64          `db:"user_id" json:"user_id"`
	Category     string         `db:"category" json:"category"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	LikeCount    int            `db:"like_count" json:"like_count"`
	SaveCount    int            `db:"save_count" json:"save_count"`
	CommentCount int            `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	// Joined fields (not in pins table)
	Author  *UserSummary `json:"author,omitempty"`
	IsLiked bool         `json:"is_liked"`
	IsSaved bool         `json:"is_saved"`
}

// CreatePinRequest is the request body for creating a pin. The file fields
// come from a prior media upload.
type CreatePinRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	FileID      string   `json:"file_id"`
	FileURL     string   `json:"file_url"`
	FileType    string   `json:"file_type"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// UpdatePinRequest is the request body for updating pin metadata.
type UpdatePinRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
}

// SavePinRequest optionally names a board to file the pin under.
type SavePinRequest struct {
	BoardID *int64 `json:"board_id"`
}

// LikeToggleResponse reports the state after a like toggle.
type LikeToggleResponse struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
}

// PinListResponse is the paginated pin list response.
type PinListResponse struct {
	Pins       []Pin   `json:"pins"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// Content categories shared by pins and boards.
const (
	CategoryArt         = "Art"
	CategoryPhotography = "Photography"
	CategoryDIY         = "DIY"
	CategoryFood        = "Food"
	CategoryFashion     = "Fashion"
	CategoryTravel      = "Travel"
	CategoryOther       = "Other"
)

var allowedCategories = map[string]struct{}{
	CategoryArt: {}, CategoryPhotography: {}, CategoryDIY: {}, CategoryFood: {},
	CategoryFashion: {}, CategoryTravel: {}, CategoryOther: {},
}

// IsAllowedCategory reports whether the category is one of the fixed set.
func IsAllowedCategory(category string) bool {
	_, ok := allowedCategories[category]
	return ok
}

// Supported pin file MIME types.
const (
	FileTypeJPEG = "image/jpeg"
	FileTypePNG  = "image/png"
	FileTypeGIF  = "image/gif"
	FileTypeMP4  = "video/mp4"
	FileTypeMP3  = "audio/mpeg"
)

var allowedFileTypes = map[string]struct{}{
	FileTypeJPEG: {}, FileTypePNG: {}, FileTypeGIF: {}, FileTypeMP4: {}, FileTypeMP3: {},
}

// IsAllowedFileType reports whether the MIME type may back a pin.
func IsAllowedFileType(fileType string) bool {
	_, ok := allowedFileTypes[fileType]
	return ok
}

// Pin field constraints
const (
	MaxPinTitleLength       = 100
	MaxPinDescriptionLength = 500
)

// Validate checks pin creation fields, filling defaults where the source
// schema does (empty category means Other).
func (r *CreatePinRequest) Validate() error {
	var v FieldCollector
	if r.Title != nil && len(*r.Title) > MaxPinTitleLength {
		v.Add("title")
	}
	if r.Description != nil && len(*r.Description) > MaxPinDescriptionLength {
		v.Add("description")
	}
	if r.FileID == "" {
		v.Add("file_id")
	}
	if r.FileURL == "" {
		v.Add("file_url")
	}
	if !IsAllowedFileType(r.FileType) {
		v.Add("file_type")
	}
	if r.Category == "" {
		r.Category = CategoryOther
	}
	if !IsAllowedCategory(r.Category) {
		v.Add("category")
	}
	return v.Err()
}

// Validate checks pin update fields.
func (r *UpdatePinRequest) Validate() error {
	var v FieldCollector
	if r.Title != nil && len(*r.Title) > MaxPinTitleLength {
		v.Add("title")
	}
	if r.Description != nil && len(*r.Description) > MaxPinDescriptionLength {
		v.Add("description")
	}
	if r.Category != nil && !IsAllowedCategory(*r.Category) {
		v.Add("category")
	}
	return v.Err()
}

// Pin errors
var (
	ErrPinNotFound    = errors.New("pin not found")
	ErrNotPinOwner    = errors.New("not the owner of this pin")
	ErrAlreadySaved   = errors.New("pin already saved")
	ErrBoardNotUsable = errors.New("board does not exist or is not yours to save to")
)
