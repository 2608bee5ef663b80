package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the compact user representation embedded in lists
// (followers, likers, comment authors).
type UserSummary struct {
	ID              int64   `db:"id" json:"id"`
	Username        string  `db:"username" json:"username"`
	FirstName       string  `db:"first_name" json:"first_name"`
	Surname         *string `db:"surname" json:"surname"`
	ProfileImageURL *string `db:"profile_image_url" json:"profile_image_url"`
	IsFollowing     bool    `json:"is_following"`
}

type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	NextCursor *string       `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// FollowToggleResponse reports the state after a follow toggle.
type FollowToggleResponse struct {
	Following bool   `json:"following"`
	Message   string `json:"message"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
