package service

import (
	"context"
	"time"

	"pinboard/internal/cache"
	"pinboard/internal/model"
	"pinboard/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so tests swap in mocks that
// return controlled responses. Each mock exposes fn fields: a test sets
// only the functions it cares about, everything else falls back to a
// harmless default.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateProfileFn    func(ctx context.Context, id int64, bio, profileImageURL *string) (*model.User, error)
	deleteFn           func(ctx context.Context, id int64) error

	// Track calls for assertions
	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, bio, profileImageURL *string) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, bio, profileImageURL)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockFollowRepository struct {
	toggleFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowersFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	getFollowingFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	getFollowerIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getFolloweeIDsFn func(ctx context.Context, userID int64) ([]int64, error)

	toggleCalls int
}

func (m *mockFollowRepository) Toggle(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.toggleCalls++
	if m.toggleFn != nil {
		return m.toggleFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockPinRepository struct {
	createFn             func(ctx context.Context, pin *model.Pin) error
	getByIDFn            func(ctx context.Context, pinID int64) (*model.Pin, error)
	getByIDsFn           func(ctx context.Context, pinIDs []int64) ([]model.Pin, error)
	updateFn             func(ctx context.Context, pinID, userID int64, req model.UpdatePinRequest) (*model.Pin, error)
	deleteFn             func(ctx context.Context, pinID, userID int64) error
	existsFn             func(ctx context.Context, pinID int64) (bool, error)
	getAuthorIDFn        func(ctx context.Context, pinID int64) (int64, error)
	toggleLikeFn         func(ctx context.Context, pinID, userID int64) (bool, error)
	saveFn               func(ctx context.Context, pinID, userID int64, boardID *int64) error
	getCreatedByUserFn   func(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error)
	getSavedByUserFn     func(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error)
	checkLikesFn         func(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error)
	checkSavesFn         func(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error)
	getRecentPinsFn      func(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error)
	getHomeFeedPinIDsFn  func(ctx context.Context, followeeIDs []int64, limit int) ([]cache.PinScore, error)

	saveCalls int
}

func (m *mockPinRepository) Create(ctx context.Context, pin *model.Pin) error {
	if m.createFn != nil {
		return m.createFn(ctx, pin)
	}
	return nil
}

func (m *mockPinRepository) GetByID(ctx context.Context, pinID int64) (*model.Pin, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, pinID)
	}
	return nil, model.ErrPinNotFound
}

func (m *mockPinRepository) GetByIDs(ctx context.Context, pinIDs []int64) ([]model.Pin, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, pinIDs)
	}
	return nil, nil
}

func (m *mockPinRepository) Update(ctx context.Context, pinID, userID int64, req model.UpdatePinRequest) (*model.Pin, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, pinID, userID, req)
	}
	return nil, model.ErrPinNotFound
}

func (m *mockPinRepository) Delete(ctx context.Context, pinID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, pinID, userID)
	}
	return nil
}

func (m *mockPinRepository) Exists(ctx context.Context, pinID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, pinID)
	}
	return true, nil
}

func (m *mockPinRepository) GetAuthorID(ctx context.Context, pinID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, pinID)
	}
	return 0, model.ErrPinNotFound
}

func (m *mockPinRepository) ToggleLike(ctx context.Context, pinID, userID int64) (bool, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, pinID, userID)
	}
	return true, nil
}

func (m *mockPinRepository) Save(ctx context.Context, pinID, userID int64, boardID *int64) error {
	m.saveCalls++
	if m.saveFn != nil {
		return m.saveFn(ctx, pinID, userID, boardID)
	}
	return nil
}

func (m *mockPinRepository) GetCreatedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error) {
	if m.getCreatedByUserFn != nil {
		return m.getCreatedByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPinRepository) GetSavedByUser(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Pin, *string, error) {
	if m.getSavedByUserFn != nil {
		return m.getSavedByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockPinRepository) CheckLikes(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, pinIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPinRepository) CheckSaves(ctx context.Context, userID int64, pinIDs []int64) (map[int64]bool, error) {
	if m.checkSavesFn != nil {
		return m.checkSavesFn(ctx, userID, pinIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPinRepository) GetRecentPinsByUser(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error) {
	if m.getRecentPinsFn != nil {
		return m.getRecentPinsFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockPinRepository) GetHomeFeedPinIDs(ctx context.Context, followeeIDs []int64, limit int) ([]cache.PinScore, error) {
	if m.getHomeFeedPinIDsFn != nil {
		return m.getHomeFeedPinIDsFn(ctx, followeeIDs, limit)
	}
	return nil, nil
}

type mockBoardRepository struct {
	createFn           func(ctx context.Context, board *model.Board, collaboratorIDs []int64) error
	getByIDFn          func(ctx context.Context, boardID int64) (*model.Board, error)
	getPinsFn          func(ctx context.Context, boardID int64) ([]model.Pin, error)
	getCollaboratorsFn func(ctx context.Context, boardID int64) ([]model.UserSummary, error)
	updateFn           func(ctx context.Context, boardID int64, req model.UpdateBoardRequest) (*model.Board, error)
	deleteFn           func(ctx context.Context, boardID, userID int64) error
	getByUserFn        func(ctx context.Context, userID int64, publicOnly bool) ([]model.Board, error)

	updateCalls int
}

func (m *mockBoardRepository) Create(ctx context.Context, board *model.Board, collaboratorIDs []int64) error {
	if m.createFn != nil {
		return m.createFn(ctx, board, collaboratorIDs)
	}
	return nil
}

func (m *mockBoardRepository) GetByID(ctx context.Context, boardID int64) (*model.Board, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, boardID)
	}
	return nil, model.ErrBoardNotFound
}

func (m *mockBoardRepository) GetPins(ctx context.Context, boardID int64) ([]model.Pin, error) {
	if m.getPinsFn != nil {
		return m.getPinsFn(ctx, boardID)
	}
	return nil, nil
}

func (m *mockBoardRepository) GetCollaborators(ctx context.Context, boardID int64) ([]model.UserSummary, error) {
	if m.getCollaboratorsFn != nil {
		return m.getCollaboratorsFn(ctx, boardID)
	}
	return nil, nil
}

func (m *mockBoardRepository) Update(ctx context.Context, boardID int64, req model.UpdateBoardRequest) (*model.Board, error) {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, boardID, req)
	}
	return nil, model.ErrBoardNotFound
}

func (m *mockBoardRepository) Delete(ctx context.Context, boardID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, boardID, userID)
	}
	return nil
}

func (m *mockBoardRepository) GetByUser(ctx context.Context, userID int64, publicOnly bool) ([]model.Board, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(ctx, userID, publicOnly)
	}
	return nil, nil
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, comment *model.Comment) error
	getByIDFn    func(ctx context.Context, commentID int64) (*model.Comment, error)
	updateFn     func(ctx context.Context, commentID, userID int64, text string) (*model.Comment, error)
	deleteFn     func(ctx context.Context, commentID, userID int64) error
	getByPinIDFn func(ctx context.Context, pinID int64, cursor *string, limit int) ([]model.Comment, *string, error)
	getRepliesFn func(ctx context.Context, parentCommentID int64) ([]model.Comment, error)
	toggleLikeFn func(ctx context.Context, commentID, userID int64) (bool, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID, userID int64, text string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, userID, text)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) GetByPinID(ctx context.Context, pinID int64, cursor *string, limit int) ([]model.Comment, *string, error) {
	if m.getByPinIDFn != nil {
		return m.getByPinIDFn(ctx, pinID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockCommentRepository) GetReplies(ctx context.Context, parentCommentID int64) ([]model.Comment, error) {
	if m.getRepliesFn != nil {
		return m.getRepliesFn(ctx, parentCommentID)
	}
	return nil, nil
}

func (m *mockCommentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (bool, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, commentID, userID)
	}
	return true, nil
}

type mockRefreshTokenRepository struct {
	createFn           func(ctx context.Context, token *model.RefreshToken) error
	findByTokenHashFn  func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	revokeFn           func(ctx context.Context, id string, replacedBy *string) error
	revokeAllForUserFn func(ctx context.Context, userID int64) error

	revokeAllCalls int
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	if m.findByTokenHashFn != nil {
		return m.findByTokenHashFn(ctx, tokenHash)
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id, replacedBy)
	}
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	m.revokeAllCalls++
	if m.revokeAllForUserFn != nil {
		return m.revokeAllForUserFn(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

// =============================================================================
// MOCK PUBLISHER
// =============================================================================

// mockPublisher records every published event so tests can assert on what
// went to the stream.
type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.EngagementEvent) (string, error)

	events []queue.EngagementEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.EngagementEvent) (string, error) {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}
