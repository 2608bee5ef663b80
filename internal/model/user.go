package model

import (
	"errors"
	"regexp"
	"time"
)

// User represents a registered account.
type User struct {
	ID              int64     `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	Surname         *string   `db:"surname" json:"surname"`
	Email           string    `db:"email" json:"email"`
	Username        string    `db:"username" json:"username"`
	PasswordHashed  string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	Bio             *string   `db:"bio" json:"bio"`
	ProfileImageURL *string   `db:"profile_image_url" json:"profile_image_url"`
	FollowerCount   int       `db:"follower_count" json:"follower_count"`
	FollowingCount  int       `db:"following_count" json:"following_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	FirstName       string  `json:"first_name"`
	Surname         string  `json:"surname"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	Password        string  `json:"password"`
	ProfileImageURL *string `json:"-"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse is a user profile as seen by a viewer. Boards holds only
// what the viewer may see: every board for the owner, public boards otherwise.
type ProfileResponse struct {
	User        *User   `json:"user"`
	Boards      []Board `json:"boards"`
	IsFollowing bool    `json:"is_following"`
}

// User field constraints
const (
	MinFirstNameLength = 3
	MinUsernameLength  = 3
	MinPasswordLength  = 6
	MaxBioLength       = 160
)

var (
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Validate checks registration fields and reports every violation at once.
func (r *RegisterRequest) Validate() error {
	var v FieldCollector
	if len(r.FirstName) < MinFirstNameLength {
		v.Add("first_name")
	}
	if r.Surname != "" && len(r.Surname) < MinFirstNameLength {
		v.Add("surname")
	}
	if !emailPattern.MatchString(r.Email) {
		v.Add("email")
	}
	if len(r.Username) < MinUsernameLength || !usernamePattern.MatchString(r.Username) {
		v.Add("username")
	}
	if len(r.Password) < MinPasswordLength {
		v.Add("password")
	}
	return v.Err()
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already exists")

	// ErrUsernameExists is returned when the username is taken
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
