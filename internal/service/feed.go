package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"pinboard/internal/cache"
	"pinboard/internal/model"
	"pinboard/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of pins per page
	FeedDefaultLimit = 10

	// FeedMaxLimit is the maximum number of pins per page
	FeedMaxLimit = 50

	// CacheWarmLimit is the max pins fetched when warming a cold cache
	CacheWarmLimit = 500
)

// FeedService serves the home feed: pins from followed users, newest
// first, backed by the Redis cache with a DB warm path.
type FeedService struct {
	feedCache  cache.FeedCache
	pinRepo    repository.PinRepository
	followRepo repository.FollowRepository
	pinService *PinService
}

func NewFeedService(
	feedCache cache.FeedCache,
	pinRepo repository.PinRepository,
	followRepo repository.FollowRepository,
	pinService *PinService,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		pinRepo:    pinRepo,
		followRepo: followRepo,
		pinService: pinService,
	}
}

// GetFeed retrieves the user's home feed with cursor-based pagination.
//
// Flow:
//  1. Check if the cache exists for the user
//  2. If not, warm it from the DB (followees' pins, up to the cap)
//  3. Read pin IDs from the cache (honoring the cursor)
//  4. Hydrate full pins from the DB, preserving cache order
//  5. Build the next cursor from the last pin
func (s *FeedService) GetFeed(ctx context.Context, userID int64, cursor *string, limit int) (*model.PinListResponse, error) {
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		log.Printf("[FeedService] Cache check failed for user=%d: %v", userID, err)
	}

	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			log.Printf("[FeedService] Cache warm failed for user=%d: %v", userID, err)
		}
	}

	var cursorScore *float64
	if cursor != nil {
		score, _, err := parseFeedCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		cursorScore = &score
	}

	pinIDs, scores, err := s.feedCache.GetFeed(ctx, userID, cursorScore, limit)
	if err != nil {
		return nil, fmt.Errorf("get feed from cache: %w", err)
	}

	if len(pinIDs) == 0 {
		return &model.PinListResponse{Pins: []model.Pin{}}, nil
	}

	pins, err := s.pinRepo.GetByIDs(ctx, pinIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate pins: %w", err)
	}
	pins = s.pinService.EnrichPins(ctx, pins, &userID)

	// Pagination follows the cache read, not the hydrated count: a cached
	// ID that no longer resolves in the DB must not end the scan early.
	var nextCursor *string
	hasMore := len(pinIDs) == limit
	if hasMore {
		c := formatFeedCursor(scores[len(scores)-1], pinIDs[len(pinIDs)-1])
		nextCursor = &c
	}

	return &model.PinListResponse{
		Pins:       pins,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// warmCache populates the user's feed cache from the DB.
func (s *FeedService) warmCache(ctx context.Context, userID int64) error {
	startTime := time.Now()

	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get followee ids: %w", err)
	}

	// Users see their own pins in their home feed
	followeeIDs = append(followeeIDs, userID)

	pins, err := s.pinRepo.GetHomeFeedPinIDs(ctx, followeeIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get home feed pin ids: %w", err)
	}
	if len(pins) == 0 {
		return nil
	}

	if err := s.feedCache.WarmCache(ctx, userID, pins); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: user=%d pins=%d duration=%v",
		userID, len(pins), time.Since(startTime))
	return nil
}

// parseFeedCursor parses an "id:timestamp" cursor, returning the
// timestamp as a sorted-set score plus the pin ID.
func parseFeedCursor(cursor string) (float64, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pin id in cursor: %w", err)
	}

	score, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return score, id, nil
}

// formatFeedCursor creates an "id:timestamp" cursor.
func formatFeedCursor(score float64, id int64) string {
	return fmt.Sprintf("%d:%.0f", id, score)
}
