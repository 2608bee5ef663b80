package service

import (
	"context"
	"fmt"
	"log"

	"pinboard/internal/model"
	"pinboard/internal/queue"
	"pinboard/internal/repository"
)

type PinService struct {
	pinRepo   repository.PinRepository
	userRepo  repository.UserRepository
	publisher queue.Publisher
}

func NewPinService(
	pinRepo repository.PinRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *PinService {
	return &PinService{
		pinRepo:   pinRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Create creates a new pin and publishes an event so workers fan it out
// to followers' feeds.
func (s *PinService) Create(ctx context.Context, userID int64, req model.CreatePinRequest) (*model.Pin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pin := &model.Pin{
		Title:       req.Title,
		Description: req.Description,
		FileID:      req.FileID,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		UserID:      userID,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if pin.Tags == nil {
		pin.Tags = []string{}
	}

	if err := s.pinRepo.Create(ctx, pin); err != nil {
		return nil, fmt.Errorf("create pin: %w", err)
	}

	// Publish after commit; the pin exists either way and fan-out is
	// retried by pending-message recovery.
	if s.publisher != nil {
		event := queue.NewPinCreatedEvent(pin.ID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[PinService] Failed to publish PinCreated: pin=%d err=%v", pin.ID, err)
		}
	}

	s.attachAuthor(ctx, pin)

	return pin, nil
}

// GetByID retrieves a single pin with author info and the viewer's
// like/save state.
func (s *PinService) GetByID(ctx context.Context, pinID int64, viewerID *int64) (*model.Pin, error) {
	pin, err := s.pinRepo.GetByID(ctx, pinID)
	if err != nil {
		return nil, err
	}

	s.attachAuthor(ctx, pin)

	if viewerID != nil {
		if liked, err := s.pinRepo.CheckLikes(ctx, *viewerID, []int64{pinID}); err == nil {
			pin.IsLiked = liked[pinID]
		}
		if saved, err := s.pinRepo.CheckSaves(ctx, *viewerID, []int64{pinID}); err == nil {
			pin.IsSaved = saved[pinID]
		}
	}

	return pin, nil
}

// Update edits pin metadata. Only the owner may update; the file itself
// is immutable once pinned.
func (s *PinService) Update(ctx context.Context, pinID, userID int64, req model.UpdatePinRequest) (*model.Pin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pin, err := s.pinRepo.Update(ctx, pinID, userID, req)
	if err != nil {
		return nil, err
	}

	s.attachAuthor(ctx, pin)
	return pin, nil
}

// Delete removes a pin and publishes an event to purge it from feeds.
func (s *PinService) Delete(ctx context.Context, pinID, userID int64) error {
	if err := s.pinRepo.Delete(ctx, pinID, userID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewPinDeletedEvent(pinID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
			log.Printf("[PinService] Failed to publish PinDeleted: pin=%d err=%v", pinID, err)
		}
	}

	return nil
}

// ToggleLike flips the viewer's like on a pin. The repository commits the
// membership row and counter together; the notification event goes out
// only on the like direction.
func (s *PinService) ToggleLike(ctx context.Context, pinID, userID int64) (*model.LikeToggleResponse, error) {
	exists, err := s.pinRepo.Exists(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("check pin exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPinNotFound
	}

	liked, err := s.pinRepo.ToggleLike(ctx, pinID, userID)
	if err != nil {
		return nil, err
	}

	if liked && s.publisher != nil {
		authorID, err := s.pinRepo.GetAuthorID(ctx, pinID)
		if err == nil && authorID != userID {
			event := queue.NewPinLikedEvent(pinID, authorID, userID)
			if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
				log.Printf("[PinService] Failed to publish PinLiked: pin=%d err=%v", pinID, err)
			}
		}
	}

	message := "Liked"
	if !liked {
		message = "Unliked"
	}

	return &model.LikeToggleResponse{Liked: liked, Message: message}, nil
}

// Save files the pin under the user's saved pins, optionally onto a
// board. Saving is not a toggle: saving twice is a conflict.
func (s *PinService) Save(ctx context.Context, pinID, userID int64, boardID *int64) error {
	exists, err := s.pinRepo.Exists(ctx, pinID)
	if err != nil {
		return fmt.Errorf("check pin exists: %w", err)
	}
	if !exists {
		return model.ErrPinNotFound
	}

	return s.pinRepo.Save(ctx, pinID, userID, boardID)
}

// GetCreatedByUser lists a user's created pins, newest first.
func (s *PinService) GetCreatedByUser(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64) (*model.PinListResponse, error) {
	limit = clampPinLimit(limit)

	pins, nextCursor, err := s.pinRepo.GetCreatedByUser(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, pins, nextCursor, viewerID), nil
}

// GetSavedByUser lists a user's saved pins, most recently saved first.
func (s *PinService) GetSavedByUser(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64) (*model.PinListResponse, error) {
	limit = clampPinLimit(limit)

	pins, nextCursor, err := s.pinRepo.GetSavedByUser(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return s.buildListResponse(ctx, pins, nextCursor, viewerID), nil
}

func (s *PinService) buildListResponse(ctx context.Context, pins []model.Pin, nextCursor *string, viewerID *int64) *model.PinListResponse {
	pins = s.EnrichPins(ctx, pins, viewerID)

	if pins == nil {
		pins = []model.Pin{}
	}

	return &model.PinListResponse{
		Pins:       pins,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}
}

// EnrichPins attaches author summaries and the viewer's like/save state to
// a pin list. Authors are deduplicated and fetched once each; like/save
// state comes from two batch queries. Failures degrade to unenriched pins.
func (s *PinService) EnrichPins(ctx context.Context, pins []model.Pin, viewerID *int64) []model.Pin {
	if len(pins) == 0 {
		return pins
	}

	authors := make(map[int64]*model.UserSummary)
	for i := range pins {
		userID := pins[i].UserID
		if _, ok := authors[userID]; !ok {
			user, err := s.userRepo.GetByID(ctx, userID)
			if err != nil {
				authors[userID] = nil
				continue
			}
			authors[userID] = &model.UserSummary{
				ID:              user.ID,
				Username:        user.Username,
				FirstName:       user.FirstName,
				Surname:         user.Surname,
				ProfileImageURL: user.ProfileImageURL,
			}
		}
	}
	for i := range pins {
		pins[i].Author = authors[pins[i].UserID]
	}

	if viewerID != nil {
		pinIDs := make([]int64, len(pins))
		for i, p := range pins {
			pinIDs[i] = p.ID
		}

		if likeMap, err := s.pinRepo.CheckLikes(ctx, *viewerID, pinIDs); err == nil {
			for i := range pins {
				pins[i].IsLiked = likeMap[pins[i].ID]
			}
		}
		if saveMap, err := s.pinRepo.CheckSaves(ctx, *viewerID, pinIDs); err == nil {
			for i := range pins {
				pins[i].IsSaved = saveMap[pins[i].ID]
			}
		}
	}

	return pins
}

func (s *PinService) attachAuthor(ctx context.Context, pin *model.Pin) {
	author, err := s.userRepo.GetByID(ctx, pin.UserID)
	if err != nil {
		return
	}
	pin.Author = &model.UserSummary{
		ID:              author.ID,
		Username:        author.Username,
		FirstName:       author.FirstName,
		Surname:         author.Surname,
		ProfileImageURL: author.ProfileImageURL,
	}
}

func clampPinLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
