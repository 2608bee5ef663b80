package worker

import (
	"context"
	"fmt"
	"log"

	"pinboard/internal/cache"
	"pinboard/internal/queue"
)

// FollowerProvider abstracts follower lookups so workers don't depend on
// the repository layer directly.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RecentPinsProvider fetches recent pins for feed backfill and removal.
type RecentPinsProvider interface {
	// GetRecentPinsByUser returns recent pins by a user as
	// (pinID, timestamp) pairs.
	GetRecentPinsByUser(ctx context.Context, userID int64, limit int) ([]cache.PinScore, error)
}

// NotificationCreator persists notification rows for engagement events.
type NotificationCreator interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, pinID, commentID *int64) error
}

// Handler processes engagement events from the stream.
type Handler struct {
	feedCache    cache.FeedCache
	followers    FollowerProvider
	pins         RecentPinsProvider
	notifCreator NotificationCreator // nil when notifications are not wired
}

// NewHandler creates a new event handler.
func NewHandler(feedCache cache.FeedCache, followers FollowerProvider, pins RecentPinsProvider) *Handler {
	return &Handler{
		feedCache: feedCache,
		followers: followers,
		pins:      pins,
	}
}

// SetNotificationCreator wires the notification sink for follow, like and
// comment events.
func (h *Handler) SetNotificationCreator(nc NotificationCreator) {
	h.notifCreator = nc
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	switch event.Type {
	case queue.EventPinCreated:
		return h.handlePinCreated(ctx, event)
	case queue.EventPinDeleted:
		return h.handlePinDeleted(ctx, event)
	case queue.EventUserFollowed:
		return h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		return h.handleUserUnfollowed(ctx, event)
	case queue.EventPinLiked:
		return h.handlePinLiked(ctx, event)
	case queue.EventPinCommented:
		return h.handlePinCommented(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handlePinCreated fans out a new pin to all followers' feed caches.
func (h *Handler) handlePinCreated(ctx context.Context, event queue.EngagementEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddPin(ctx, followerID, event.PinID, event.Timestamp); err != nil {
			// Keep going; one follower's cache failure shouldn't stop
			// the rest of the fan-out.
			log.Printf("[Worker] PinCreated: add to user=%d failed: %v", followerID, err)
			failCount++
		}
	}

	// The author sees their own pins in their home feed too.
	if err := h.feedCache.AddPin(ctx, event.AuthorID, event.PinID, event.Timestamp); err != nil {
		log.Printf("[Worker] PinCreated: add to author's own feed failed: %v", err)
	}

	log.Printf("[Worker] PinCreated DONE: pin=%d fanout=%d failed=%d",
		event.PinID, len(followers)+1, failCount)
	return nil
}

// handlePinDeleted removes a pin from all followers' feed caches.
func (h *Handler) handlePinDeleted(ctx context.Context, event queue.EngagementEvent) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemovePin(ctx, followerID, event.PinID); err != nil {
			log.Printf("[Worker] PinDeleted: remove from user=%d failed: %v", followerID, err)
			failCount++
		}
	}

	if err := h.feedCache.RemovePin(ctx, event.AuthorID, event.PinID); err != nil {
		log.Printf("[Worker] PinDeleted: remove from author's own feed failed: %v", err)
	}

	log.Printf("[Worker] PinDeleted DONE: pin=%d fanout=%d failed=%d",
		event.PinID, len(followers)+1, failCount)
	return nil
}

// handleUserFollowed backfills the follower's feed with the followee's
// recent pins and writes a follow notification.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.EngagementEvent) error {
	const backfillLimit = 20
	pins, err := h.pins.GetRecentPinsByUser(ctx, event.FolloweeID, backfillLimit)
	if err != nil {
		return fmt.Errorf("get recent pins: %w", err)
	}

	var failCount int
	for _, p := range pins {
		if err := h.feedCache.AddPin(ctx, event.FollowerID, p.PinID, p.Timestamp); err != nil {
			log.Printf("[Worker] UserFollowed: backfill pin=%d failed: %v", p.PinID, err)
			failCount++
		}
	}

	log.Printf("[Worker] UserFollowed DONE: follower=%d backfilled=%d failed=%d",
		event.FollowerID, len(pins), failCount)

	if h.notifCreator != nil {
		err := h.notifCreator.Create(ctx, event.FolloweeID, event.FollowerID, "follow", nil, nil)
		if err != nil {
			log.Printf("[Worker] UserFollowed: create notification failed: %v", err)
		}
	}

	return nil
}

// handleUserUnfollowed removes the followee's pins from the follower's feed.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.EngagementEvent) error {
	// Higher limit than backfill: anything of theirs still cached should go.
	const removeLimit = 100
	pins, err := h.pins.GetRecentPinsByUser(ctx, event.FolloweeID, removeLimit)
	if err != nil {
		return fmt.Errorf("get pins to remove: %w", err)
	}

	var failCount int
	for _, p := range pins {
		if err := h.feedCache.RemovePin(ctx, event.FollowerID, p.PinID); err != nil {
			log.Printf("[Worker] UserUnfollowed: remove pin=%d failed: %v", p.PinID, err)
			failCount++
		}
	}

	log.Printf("[Worker] UserUnfollowed DONE: follower=%d removed=%d failed=%d",
		event.FollowerID, len(pins), failCount)
	return nil
}

// handlePinLiked writes a like notification for the pin owner.
func (h *Handler) handlePinLiked(ctx context.Context, event queue.EngagementEvent) error {
	if h.notifCreator == nil {
		return nil
	}

	// No notification for liking your own pin
	if event.ActorID == event.AuthorID {
		return nil
	}

	pinID := event.PinID
	if err := h.notifCreator.Create(ctx, event.AuthorID, event.ActorID, "like", &pinID, nil); err != nil {
		return fmt.Errorf("create like notification: %w", err)
	}

	return nil
}

// handlePinCommented writes a comment notification for the pin owner.
func (h *Handler) handlePinCommented(ctx context.Context, event queue.EngagementEvent) error {
	if h.notifCreator == nil {
		return nil
	}

	if event.ActorID == event.AuthorID {
		return nil
	}

	pinID := event.PinID
	if err := h.notifCreator.Create(ctx, event.AuthorID, event.ActorID, "comment", &pinID, event.CommentID); err != nil {
		return fmt.Errorf("create comment notification: %w", err)
	}

	return nil
}
