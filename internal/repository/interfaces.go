package repository

import (
	"context"
	"time"

	"pinboard/internal/cache"
	"pinboard/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, bio, profileImageURL *string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Toggle links follower->followee if absent, unlinks if present.
	// Both sides (join row + both counters) commit in one transaction.
	Toggle(ctx context.Context, followerID, followeeID int64) (following bool, err error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	// Feed system helpers
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

type PinRepository interface {
	Create(ctx context.Context, pin *model.Pin) error
	GetByID(ctx context.Context, pinID int64) (*model.Pin, error)
	GetByIDs(ctx context.Context, pinIDs []int64) ([]model.Pin, error)
	Update(ctx context.Context, pinID, userID int64, req model.UpdatePinRequest) (*model.Pin, error)
	Delete(ctx context.Context, pinID, userID int64) error
	Exists(ctx context.Context, pinID int64) (bool, error)
	GetAuthorID(ctx context.Context, pinID int64) (int64, error)
	// ToggleLike adds the user to the pin's likes if absent, removes if
	// present. Membership row and counter commit together.
	ToggleLike(ctx context.Context, pinID, userID int64) (liked bool, err error)
	// Save files the pin under the user's saved pins and, when boardID is
	// given, appends it to that board's ordered pin list. One transaction.
	Save(ctx context.Context, pinID, userID int64, boardID *int64) error
	GetCreatedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error)
	GetSavedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error)
	CheckLikes(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error)
	CheckSaves(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error)
	// Feed system helpers
	GetRecentPinsByUser(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error)
	GetHomeFeedPinIDs(ctx context.Context, followeeIDs []int64, limit int) ([]cache.PinScore, error)
}

type BoardRepository interface {
	Create(ctx context.Context, board *model.Board, collaboratorIDs []int64) error
	GetByID(ctx context.Context, boardID int64) (*model.Board, error)
	GetPins(ctx context.Context, boardID int64) ([]model.Pin, error)
	GetCollaborators(ctx context.Context, boardID int64) ([]model.UserSummary, error)
	Update(ctx context.Context, boardID int64, req model.UpdateBoardRequest) (*model.Board, error)
	Delete(ctx context.Context, boardID, userID int64) error
	GetByUser(ctx context.Context, userID int64, publicOnly bool) ([]model.Board, error)
}

type CommentRepository interface {
	// Create inserts the comment and bumps the pin's comment counter in
	// one transaction.
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Update(ctx context.Context, commentID, userID int64, text string) (*model.Comment, error)
	Delete(ctx context.Context, commentID, userID int64) error
	GetByPinID(ctx context.Context, pinID int64, cursor *string, limit int) ([]model.Comment, *string, error)
	GetReplies(ctx context.Context, parentCommentID int64) ([]model.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID int64) (liked bool, err error)
}

type NotificationRepository interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, pinID, commentID *int64) error
	List(ctx context.Context, userID int64, limit int) ([]model.Notification, int, error)
	MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}
