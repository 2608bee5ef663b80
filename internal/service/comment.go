package service

import (
	"context"
	"fmt"
	"log"

	"pinboard/internal/model"
	"pinboard/internal/queue"
	"pinboard/internal/repository"
)

// CommentService handles comments and replies on pins. Replies are one
// level deep: a reply always targets a top-level comment.
type CommentService struct {
	commentRepo repository.CommentRepository
	pinRepo     repository.PinRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	pinRepo repository.PinRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		pinRepo:     pinRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create adds a top-level comment to a pin.
func (s *CommentService) Create(ctx context.Context, pinID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.pinRepo.Exists(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("check pin exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPinNotFound
	}

	comment := &model.Comment{
		PinID:    pinID,
		UserID:   userID,
		Text:     req.Text,
		ImageURL: req.ImageURL,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.attachAuthor(ctx, comment)
	s.publishCommented(ctx, pinID, userID, comment.ID)

	return comment, nil
}

// Reply adds a reply under an existing comment. The parent must be a
// top-level comment of that pin: replying to a reply and replying across
// pins are both rejected.
func (s *CommentService) Reply(ctx context.Context, pinID, parentCommentID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parent, err := s.commentRepo.GetByID(ctx, parentCommentID)
	if err != nil {
		return nil, err
	}
	if parent.PinID != pinID {
		return nil, model.ErrCommentWrongPin
	}
	if parent.ParentCommentID != nil {
		// Flatten: replies to replies attach to the original top-level
		// comment instead of nesting deeper.
		parentCommentID = *parent.ParentCommentID
	}

	comment := &model.Comment{
		PinID:           pinID,
		UserID:          userID,
		Text:            req.Text,
		ImageURL:        req.ImageURL,
		ParentCommentID: &parentCommentID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}

	s.attachAuthor(ctx, comment)
	s.publishCommented(ctx, pinID, userID, comment.ID)

	return comment, nil
}

// Update edits a comment's text. Author only.
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Update(ctx, commentID, userID, req.Text)
	if err != nil {
		return nil, err
	}

	s.attachAuthor(ctx, comment)
	return comment, nil
}

// Delete removes a comment and its replies. Author only.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	return s.commentRepo.Delete(ctx, commentID, userID)
}

// GetByPinID returns a pin's top-level comments with their replies and
// author summaries.
func (s *CommentService) GetByPinID(ctx context.Context, pinID int64, cursor *string, limit int) (*model.CommentListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	exists, err := s.pinRepo.Exists(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("check pin exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPinNotFound
	}

	comments, nextCursor, err := s.commentRepo.GetByPinID(ctx, pinID, cursor, limit)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		s.attachAuthor(ctx, &comments[i])

		replies, err := s.commentRepo.GetReplies(ctx, comments[i].ID)
		if err != nil {
			continue
		}
		for j := range replies {
			s.attachAuthor(ctx, &replies[j])
		}
		comments[i].Replies = replies
	}

	if comments == nil {
		comments = []model.Comment{}
	}

	return &model.CommentListResponse{
		Comments:   comments,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// ToggleLike flips the user's like on a comment.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID int64) (*model.LikeToggleResponse, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.commentRepo.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	message := "Liked"
	if !liked {
		message = "Unliked"
	}

	return &model.LikeToggleResponse{Liked: liked, Message: message}, nil
}

func (s *CommentService) attachAuthor(ctx context.Context, comment *model.Comment) {
	author, err := s.userRepo.GetByID(ctx, comment.UserID)
	if err != nil {
		return
	}
	comment.Author = &model.UserSummary{
		ID:              author.ID,
		Username:        author.Username,
		FirstName:       author.FirstName,
		Surname:         author.Surname,
		ProfileImageURL: author.ProfileImageURL,
	}
}

func (s *CommentService) publishCommented(ctx context.Context, pinID, actorID, commentID int64) {
	if s.publisher == nil {
		return
	}

	authorID, err := s.pinRepo.GetAuthorID(ctx, pinID)
	if err != nil || authorID == actorID {
		return
	}

	event := queue.NewPinCommentedEvent(pinID, authorID, actorID, commentID)
	if _, err := s.publisher.Publish(ctx, queue.StreamEngagement, event); err != nil {
		log.Printf("[CommentService] Failed to publish PinCommented: pin=%d err=%v", pinID, err)
	}
}
