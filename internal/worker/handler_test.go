package worker

import (
	"context"
	"errors"
	"testing"

	"pinboard/internal/cache"
	"pinboard/internal/queue"
)

// =============================================================================
// MOCKS
// =============================================================================

// mockFeedCache records feed mutations per user so tests can assert on
// the fan-out without Redis.
type mockFeedCache struct {
	feeds map[int64][]int64 // userID -> pin IDs, append order

	addErrFor map[int64]error // per-user AddPin failures
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{feeds: make(map[int64][]int64)}
}

func (m *mockFeedCache) AddPin(ctx context.Context, userID, pinID int64, timestamp int64) error {
	if err := m.addErrFor[userID]; err != nil {
		return err
	}
	m.feeds[userID] = append(m.feeds[userID], pinID)
	return nil
}

func (m *mockFeedCache) RemovePin(ctx context.Context, userID, pinID int64) error {
	feed := m.feeds[userID]
	for i, id := range feed {
		if id == pinID {
			m.feeds[userID] = append(feed[:i], feed[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockFeedCache) GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]int64, []float64, error) {
	return m.feeds[userID], nil, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, userID int64, pins []cache.PinScore) error {
	for _, p := range pins {
		m.feeds[userID] = append(m.feeds[userID], p.PinID)
	}
	return nil
}

func (m *mockFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	return int64(len(m.feeds[userID])), nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	_, ok := m.feeds[userID]
	return ok, nil
}

type mockFollowerProvider struct {
	followers map[int64][]int64
}

func (m *mockFollowerProvider) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.followers[userID], nil
}

type mockRecentPinsProvider struct {
	pins map[int64][]cache.PinScore
}

func (m *mockRecentPinsProvider) GetRecentPinsByUser(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error) {
	pins := m.pins[userID]
	if len(pins) > limit {
		return pins[:limit], nil
	}
	return pins, nil
}

type notifRecord struct {
	UserID    int64
	ActorID   int64
	Type      string
	PinID     *int64
	CommentID *int64
}

type mockNotificationCreator struct {
	created []notifRecord
}

func (m *mockNotificationCreator) Create(ctx context.Context, userID, actorID int64, notifType string, pinID, commentID *int64) error {
	m.created = append(m.created, notifRecord{
		UserID:    userID,
		ActorID:   actorID,
		Type:      notifType,
		PinID:     pinID,
		CommentID: commentID,
	})
	return nil
}

// =============================================================================
// FAN-OUT TESTS
// =============================================================================

func TestHandler_PinCreated_FansOutToFollowers(t *testing.T) {
	feedCache := newMockFeedCache()
	followers := &mockFollowerProvider{followers: map[int64][]int64{
		1: {10, 11, 12},
	}}
	h := NewHandler(feedCache, followers, &mockRecentPinsProvider{})

	err := h.HandleEvent(context.Background(), queue.NewPinCreatedEvent(42, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every follower's feed gets the pin, plus the author's own
	for _, userID := range []int64{10, 11, 12, 1} {
		feed := feedCache.feeds[userID]
		if len(feed) != 1 || feed[0] != 42 {
			t.Errorf("feed for user %d = %v, want [42]", userID, feed)
		}
	}
}

func TestHandler_PinCreated_OneFailureDoesNotStopFanOut(t *testing.T) {
	feedCache := newMockFeedCache()
	feedCache.addErrFor = map[int64]error{11: errors.New("cache down")}
	followers := &mockFollowerProvider{followers: map[int64][]int64{
		1: {10, 11, 12},
	}}
	h := NewHandler(feedCache, followers, &mockRecentPinsProvider{})

	if err := h.HandleEvent(context.Background(), queue.NewPinCreatedEvent(42, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(feedCache.feeds[10]) != 1 || len(feedCache.feeds[12]) != 1 {
		t.Error("remaining followers should still receive the pin")
	}
	if len(feedCache.feeds[11]) != 0 {
		t.Error("failed follower should have an empty feed")
	}
}

func TestHandler_PinDeleted_RemovesFromFeeds(t *testing.T) {
	feedCache := newMockFeedCache()
	followers := &mockFollowerProvider{followers: map[int64][]int64{
		1: {10, 11},
	}}
	h := NewHandler(feedCache, followers, &mockRecentPinsProvider{})

	if err := h.HandleEvent(context.Background(), queue.NewPinCreatedEvent(42, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.HandleEvent(context.Background(), queue.NewPinDeletedEvent(42, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, userID := range []int64{10, 11, 1} {
		if len(feedCache.feeds[userID]) != 0 {
			t.Errorf("feed for user %d = %v, want empty", userID, feedCache.feeds[userID])
		}
	}
}

// =============================================================================
// FOLLOW / UNFOLLOW TESTS
// =============================================================================

func TestHandler_UserFollowed_BackfillsAndNotifies(t *testing.T) {
	feedCache := newMockFeedCache()
	pins := &mockRecentPinsProvider{pins: map[int64][]cache.PinScore{
		2: {{PinID: 42, Timestamp: 300}, {PinID: 41, Timestamp: 200}},
	}}
	notifs := &mockNotificationCreator{}
	h := NewHandler(feedCache, &mockFollowerProvider{}, pins)
	h.SetNotificationCreator(notifs)

	err := h.HandleEvent(context.Background(), queue.NewUserFollowedEvent(1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := feedCache.feeds[1]; len(got) != 2 {
		t.Errorf("follower feed = %v, want the followee's 2 recent pins", got)
	}

	if len(notifs.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.UserID != 2 || n.ActorID != 1 || n.Type != "follow" {
		t.Errorf("notification = %+v, want follow from 1 to 2", n)
	}
}

func TestHandler_UserUnfollowed_PurgesFolloweePins(t *testing.T) {
	feedCache := newMockFeedCache()
	feedCache.feeds[1] = []int64{42, 41, 99} // 99 belongs to someone else
	pins := &mockRecentPinsProvider{pins: map[int64][]cache.PinScore{
		2: {{PinID: 42, Timestamp: 300}, {PinID: 41, Timestamp: 200}},
	}}
	h := NewHandler(feedCache, &mockFollowerProvider{}, pins)

	err := h.HandleEvent(context.Background(), queue.NewUserUnfollowedEvent(1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := feedCache.feeds[1]; len(got) != 1 || got[0] != 99 {
		t.Errorf("follower feed = %v, want [99]", got)
	}
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestHandler_PinLiked_Notification(t *testing.T) {
	notifs := &mockNotificationCreator{}
	h := NewHandler(newMockFeedCache(), &mockFollowerProvider{}, &mockRecentPinsProvider{})
	h.SetNotificationCreator(notifs)

	err := h.HandleEvent(context.Background(), queue.NewPinLikedEvent(42, 2, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.UserID != 2 || n.ActorID != 1 || n.Type != "like" {
		t.Errorf("notification = %+v, want like for pin owner 2 from 1", n)
	}
	if n.PinID == nil || *n.PinID != 42 {
		t.Errorf("notification pin = %v, want 42", n.PinID)
	}
}

func TestHandler_SelfEngagement_NoNotification(t *testing.T) {
	notifs := &mockNotificationCreator{}
	h := NewHandler(newMockFeedCache(), &mockFollowerProvider{}, &mockRecentPinsProvider{})
	h.SetNotificationCreator(notifs)

	// Actor and author are the same user
	if err := h.HandleEvent(context.Background(), queue.NewPinLikedEvent(42, 1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.HandleEvent(context.Background(), queue.NewPinCommentedEvent(42, 1, 1, 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 0 {
		t.Errorf("notifications = %d, want 0 for self-engagement", len(notifs.created))
	}
}

func TestHandler_PinCommented_Notification(t *testing.T) {
	notifs := &mockNotificationCreator{}
	h := NewHandler(newMockFeedCache(), &mockFollowerProvider{}, &mockRecentPinsProvider{})
	h.SetNotificationCreator(notifs)

	err := h.HandleEvent(context.Background(), queue.NewPinCommentedEvent(42, 2, 1, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifs.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.Type != "comment" || n.CommentID == nil || *n.CommentID != 100 {
		t.Errorf("notification = %+v, want comment with comment ID 100", n)
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := NewHandler(newMockFeedCache(), &mockFollowerProvider{}, &mockRecentPinsProvider{})

	err := h.HandleEvent(context.Background(), queue.EngagementEvent{Type: "mystery"})
	if err == nil {
		t.Error("expected error for unknown event type")
	}
}

// =============================================================================
// EVENT CODEC TESTS
// =============================================================================

func TestEngagementEvent_StreamRoundTrip(t *testing.T) {
	original := queue.NewPinCommentedEvent(42, 2, 1, 100)

	values, err := original.ToMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["type"] != queue.EventPinCommented {
		t.Errorf("type field = %v, want %q", values["type"], queue.EventPinCommented)
	}

	parsed, err := queue.ParseEngagementEvent(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Type != original.Type || parsed.PinID != original.PinID ||
		parsed.AuthorID != original.AuthorID || parsed.ActorID != original.ActorID {
		t.Errorf("parsed = %+v, want %+v", parsed, original)
	}
	if parsed.CommentID == nil || *parsed.CommentID != 100 {
		t.Errorf("parsed comment ID = %v, want 100", parsed.CommentID)
	}
}

func TestParseEngagementEvent_MissingData(t *testing.T) {
	_, err := queue.ParseEngagementEvent(map[string]interface{}{"type": "pin_created"})
	if err == nil {
		t.Error("expected error when data field is missing")
	}
}
