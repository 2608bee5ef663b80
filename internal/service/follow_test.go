package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pinboard/internal/model"
	"pinboard/internal/queue"
)

// =============================================================================
// TOGGLE TESTS
// =============================================================================

func TestFollowService_Toggle_SelfFollow(t *testing.T) {
	mockFollows := &mockFollowRepository{}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, nil)

	result, err := svc.Toggle(context.Background(), 1, 1)

	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Errorf("error = %v, want %v", err, model.ErrCannotFollowSelf)
	}
	if result != nil {
		t.Error("expected nil result")
	}
	if mockFollows.toggleCalls != 0 {
		t.Error("Toggle should not reach the repository on self-follow")
	}
}

func TestFollowService_Toggle_UnknownUser(t *testing.T) {
	mockFollows := &mockFollowRepository{}
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewFollowService(mockFollows, mockUsers, nil)

	_, err := svc.Toggle(context.Background(), 1, 999)

	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if mockFollows.toggleCalls != 0 {
		t.Error("Toggle should not reach the repository for a missing followee")
	}
}

func TestFollowService_Toggle_RoundTrip(t *testing.T) {
	following := false
	mockFollows := &mockFollowRepository{
		toggleFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			following = !following
			return following, nil
		},
	}
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFollowService(mockFollows, mockUsers, pub)

	// First toggle: follow
	result, err := svc.Toggle(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Following {
		t.Error("expected following=true after first toggle")
	}
	if result.Message != "Followed" {
		t.Errorf("message = %q, want %q", result.Message, "Followed")
	}

	// Second toggle: back to not following
	result, err = svc.Toggle(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Following {
		t.Error("expected following=false after second toggle")
	}
	if result.Message != "Unfollowed" {
		t.Errorf("message = %q, want %q", result.Message, "Unfollowed")
	}

	// Both directions publish their event
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Type != queue.EventUserFollowed {
		t.Errorf("first event = %q, want %q", pub.events[0].Type, queue.EventUserFollowed)
	}
	if pub.events[1].Type != queue.EventUserUnfollowed {
		t.Errorf("second event = %q, want %q", pub.events[1].Type, queue.EventUserUnfollowed)
	}
	if pub.events[0].FollowerID != 1 || pub.events[0].FolloweeID != 2 {
		t.Errorf("event follower/followee = %d/%d, want 1/2",
			pub.events[0].FollowerID, pub.events[0].FolloweeID)
	}
}

func TestFollowService_Toggle_PublishFailureIsNotFatal(t *testing.T) {
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, stream string, event queue.EngagementEvent) (string, error) {
			return "", errors.New("redis down")
		},
	}
	svc := NewFollowService(&mockFollowRepository{}, mockUsers, pub)

	result, err := svc.Toggle(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("toggle should succeed even when publish fails, got: %v", err)
	}
	if !result.Following {
		t.Error("expected following=true")
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestFollowService_GetFollowers_Enrichment(t *testing.T) {
	cursorTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	mockFollows := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
			return []model.UserSummary{{ID: 10}, {ID: 11}, {ID: 12}}, &cursorTime, nil
		},
		checkFollowsFn: func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{11: true}, nil
		},
	}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, nil)

	viewer := int64(5)
	result, err := svc.GetFollowers(context.Background(), 1, nil, 20, &viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Users) != 3 {
		t.Fatalf("users = %d, want 3", len(result.Users))
	}
	if result.Users[0].IsFollowing || !result.Users[1].IsFollowing || result.Users[2].IsFollowing {
		t.Errorf("is_following flags = %v/%v/%v, want false/true/false",
			result.Users[0].IsFollowing, result.Users[1].IsFollowing, result.Users[2].IsFollowing)
	}

	if !result.HasMore {
		t.Error("expected has_more=true")
	}
	if result.NextCursor == nil {
		t.Fatal("expected next cursor")
	}
	if got := *result.NextCursor; got != cursorTime.Format(time.RFC3339Nano) {
		t.Errorf("cursor = %q, want %q", got, cursorTime.Format(time.RFC3339Nano))
	}
}

func TestFollowService_GetFollowing_LastPage(t *testing.T) {
	mockFollows := &mockFollowRepository{
		getFollowingFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
			return []model.UserSummary{{ID: 7}}, nil, nil
		},
	}
	svc := NewFollowService(mockFollows, &mockUserRepository{}, nil)

	result, err := svc.GetFollowing(context.Background(), 1, nil, 20, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.HasMore {
		t.Error("expected has_more=false on last page")
	}
	if result.NextCursor != nil {
		t.Error("expected no cursor on last page")
	}
}
