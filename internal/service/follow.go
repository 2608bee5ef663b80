package service

import (
	"context"
	"log"
	"time"

	"pinboard/internal/model"
	"pinboard/internal/queue"
	"pinboard/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Toggle follows the target if not currently followed, unfollows
// otherwise. The direction depends only on current membership, so calling
// it twice always lands back on the starting state.
func (s *FollowService) Toggle(ctx context.Context, followerID, followeeID int64) (*model.FollowToggleResponse, error) {
	if followerID == followeeID {
		return nil, model.ErrCannotFollowSelf
	}

	// Fail with 404 before touching the relation
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Toggle(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	// Publish after commit, best-effort: feeds and notifications catch up
	// asynchronously.
	if s.publisher != nil {
		var event queue.EngagementEvent
		if following {
			event = queue.NewUserFollowedEvent(followerID, followeeID)
		} else {
			event = queue.NewUserUnfollowedEvent(followerID, followeeID)
		}
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[FollowService] Failed to publish %s: follower=%d followee=%d err=%v",
				event.Type, followerID, followeeID, err)
		}
	}

	message := "Followed"
	if !following {
		message = "Unfollowed"
	}

	return &model.FollowToggleResponse{Following: following, Message: message}, nil
}

// GetFollowers retrieves users who follow the specified user with
// cursor-based pagination; the viewer's own follow status toward each is
// batch-checked with a single ANY() query rather than N+1.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowers(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, users, nextCursor, viewerID), nil
}

// GetFollowing retrieves users that the specified user follows. See
// GetFollowers for the pagination and enrichment scheme.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	users, nextCursor, err := s.followRepo.GetFollowing(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, users, nextCursor, viewerID), nil
}

func (s *FollowService) buildListResponse(ctx context.Context, users []model.UserSummary, nextCursor *time.Time, viewerID *int64) *model.FollowListResponse {
	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	var nextCursorStr *string
	if nextCursor != nil {
		str := nextCursor.Format(time.RFC3339Nano)
		nextCursorStr = &str
	}

	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursorStr,
		HasMore:    nextCursor != nil,
	}
}

// enrichWithFollowStatus batch-checks which listed users the viewer
// follows. A failed check degrades to is_following=false rather than
// failing the request.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}
