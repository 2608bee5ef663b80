package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the engagement stream
const (
	EventPinCreated     = "pin_created"
	EventPinDeleted     = "pin_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventPinLiked       = "pin_liked"
	EventPinCommented   = "pin_commented"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for engagement workers
const (
	ConsumerGroupEngagement = "engagement_workers"
)

// EngagementEvent represents an event published to the engagement stream.
// All events share this structure; which fields are set depends on Type.
type EngagementEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Pin events (PinCreated, PinDeleted, PinLiked, PinCommented)
	PinID    int64 `json:"pin_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"` // Pin owner

	// Actor for like/comment events (who liked or commented)
	ActorID   int64  `json:"actor_id,omitempty"`
	CommentID *int64 `json:"comment_id,omitempty"`

	// Follow events (UserFollowed, UserUnfollowed)
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`
}

// NewPinCreatedEvent creates an event for a newly created pin.
// Workers fan the pin out to all followers' feed caches.
func NewPinCreatedEvent(pinID, authorID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventPinCreated,
		Timestamp: time.Now().Unix(),
		PinID:     pinID,
		AuthorID:  authorID,
	}
}

// NewPinDeletedEvent creates an event for a deleted pin.
// Workers remove the pin from all followers' feed caches.
func NewPinDeletedEvent(pinID, authorID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventPinDeleted,
		Timestamp: time.Now().Unix(),
		PinID:     pinID,
		AuthorID:  authorID,
	}
}

// NewUserFollowedEvent creates an event for a new follow.
// Workers backfill the followee's recent pins into the follower's feed
// cache and write a follow notification.
func NewUserFollowedEvent(followerID, followeeID int64) EngagementEvent {
	return EngagementEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserUnfollowedEvent creates an event for an unfollow.
// Workers remove the followee's pins from the follower's feed cache.
func NewUserUnfollowedEvent(followerID, followeeID int64) EngagementEvent {
	return EngagementEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewPinLikedEvent creates an event for a like. Workers write a like
// notification for the pin owner.
func NewPinLikedEvent(pinID, authorID, actorID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventPinLiked,
		Timestamp: time.Now().Unix(),
		PinID:     pinID,
		AuthorID:  authorID,
		ActorID:   actorID,
	}
}

// NewPinCommentedEvent creates an event for a new comment. Workers write
// a comment notification for the pin owner.
func NewPinCommentedEvent(pinID, authorID, actorID, commentID int64) EngagementEvent {
	return EngagementEvent{
		Type:      EventPinCommented,
		Timestamp: time.Now().Unix(),
		PinID:     pinID,
		AuthorID:  authorID,
		ActorID:   actorID,
		CommentID: &commentID,
	}
}

// ToMap converts the event to a map for Redis XADD. Streams store
// field-value pairs, so the event is serialized as JSON in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an EngagementEvent from stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
