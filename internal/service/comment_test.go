package service

import (
	"context"
	"errors"
	"testing"

	"pinboard/internal/model"
	"pinboard/internal/queue"
)

func newTestCommentService(commentRepo *mockCommentRepository, pinRepo *mockPinRepository, pub *mockPublisher) *CommentService {
	if commentRepo == nil {
		commentRepo = &mockCommentRepository{}
	}
	if pinRepo == nil {
		pinRepo = &mockPinRepository{}
	}
	var publisher queue.Publisher
	if pub != nil {
		publisher = pub
	}
	return NewCommentService(commentRepo, pinRepo, &mockUserRepository{}, publisher)
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCommentService_Create_Success(t *testing.T) {
	mockComments := &mockCommentRepository{
		createFn: func(ctx context.Context, comment *model.Comment) error {
			comment.ID = 100
			return nil
		},
	}
	mockPins := &mockPinRepository{
		getAuthorIDFn: func(ctx context.Context, pinID int64) (int64, error) {
			return 2, nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestCommentService(mockComments, mockPins, pub)

	comment, err := svc.Create(context.Background(), 42, 1, model.CreateCommentRequest{Text: "Love this"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.ID != 100 {
		t.Errorf("comment ID = %d, want 100", comment.ID)
	}
	if comment.ParentCommentID != nil {
		t.Error("top-level comment should have no parent")
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != queue.EventPinCommented {
		t.Errorf("event type = %q, want %q", ev.Type, queue.EventPinCommented)
	}
	if ev.CommentID == nil || *ev.CommentID != 100 {
		t.Errorf("event comment ID = %v, want 100", ev.CommentID)
	}
}

func TestCommentService_Create_PinMissing(t *testing.T) {
	mockPins := &mockPinRepository{
		existsFn: func(ctx context.Context, pinID int64) (bool, error) {
			return false, nil
		},
	}
	svc := newTestCommentService(nil, mockPins, nil)

	_, err := svc.Create(context.Background(), 999, 1, model.CreateCommentRequest{Text: "hello"})

	if !errors.Is(err, model.ErrPinNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPinNotFound)
	}
}

func TestCommentService_Create_EmptyText(t *testing.T) {
	svc := newTestCommentService(nil, nil, nil)

	_, err := svc.Create(context.Background(), 42, 1, model.CreateCommentRequest{})

	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0] != "text" {
		t.Errorf("fields = %v, want [text]", vErr.Fields)
	}
}

func TestCommentService_Create_OwnPinNoEvent(t *testing.T) {
	mockPins := &mockPinRepository{
		getAuthorIDFn: func(ctx context.Context, pinID int64) (int64, error) {
			return 1, nil // commenter owns the pin
		},
	}
	pub := &mockPublisher{}
	svc := newTestCommentService(nil, mockPins, pub)

	if _, err := svc.Create(context.Background(), 42, 1, model.CreateCommentRequest{Text: "note to self"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events, want 0 for own pin", len(pub.events))
	}
}

// =============================================================================
// REPLY TESTS
// =============================================================================

func TestCommentService_Reply_WrongPin(t *testing.T) {
	mockComments := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: commentID, PinID: 7}, nil
		},
	}
	svc := newTestCommentService(mockComments, nil, nil)

	_, err := svc.Reply(context.Background(), 42, 100, 1, model.CreateCommentRequest{Text: "reply"})

	if !errors.Is(err, model.ErrCommentWrongPin) {
		t.Errorf("error = %v, want %v", err, model.ErrCommentWrongPin)
	}
}

func TestCommentService_Reply_ParentMissing(t *testing.T) {
	svc := newTestCommentService(nil, nil, nil)

	_, err := svc.Reply(context.Background(), 42, 999, 1, model.CreateCommentRequest{Text: "reply"})

	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrCommentNotFound)
	}
}

func TestCommentService_Reply_FlattensToTopLevel(t *testing.T) {
	topLevelID := int64(100)
	var created *model.Comment
	mockComments := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			// The target is itself a reply under comment 100
			return &model.Comment{ID: commentID, PinID: 42, ParentCommentID: &topLevelID}, nil
		},
		createFn: func(ctx context.Context, comment *model.Comment) error {
			comment.ID = 102
			created = comment
			return nil
		},
	}
	svc := newTestCommentService(mockComments, nil, nil)

	comment, err := svc.Reply(context.Background(), 42, 101, 1, model.CreateCommentRequest{Text: "me too"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The reply attaches to the original top-level comment, not the reply
	if created.ParentCommentID == nil || *created.ParentCommentID != topLevelID {
		t.Errorf("parent = %v, want %d", created.ParentCommentID, topLevelID)
	}
	if comment.ID != 102 {
		t.Errorf("comment ID = %d, want 102", comment.ID)
	}
}

func TestCommentService_Reply_ToTopLevel(t *testing.T) {
	var created *model.Comment
	mockComments := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: commentID, PinID: 42}, nil
		},
		createFn: func(ctx context.Context, comment *model.Comment) error {
			comment.ID = 101
			created = comment
			return nil
		},
	}
	svc := newTestCommentService(mockComments, nil, nil)

	if _, err := svc.Reply(context.Background(), 42, 100, 1, model.CreateCommentRequest{Text: "reply"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ParentCommentID == nil || *created.ParentCommentID != 100 {
		t.Errorf("parent = %v, want 100", created.ParentCommentID)
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestCommentService_GetByPinID_AttachesReplies(t *testing.T) {
	mockComments := &mockCommentRepository{
		getByPinIDFn: func(ctx context.Context, pinID int64, cursor *string, limit int) ([]model.Comment, *string, error) {
			return []model.Comment{{ID: 100, PinID: pinID, UserID: 1}}, nil, nil
		},
		getRepliesFn: func(ctx context.Context, parentCommentID int64) ([]model.Comment, error) {
			parent := parentCommentID
			return []model.Comment{{ID: 101, PinID: 42, UserID: 2, ParentCommentID: &parent}}, nil
		},
	}
	svc := newTestCommentService(mockComments, nil, nil)

	result, err := svc.GetByPinID(context.Background(), 42, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(result.Comments))
	}
	if len(result.Comments[0].Replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(result.Comments[0].Replies))
	}
	if result.HasMore {
		t.Error("expected has_more=false")
	}
}

func TestCommentService_GetByPinID_PinMissing(t *testing.T) {
	mockPins := &mockPinRepository{
		existsFn: func(ctx context.Context, pinID int64) (bool, error) {
			return false, nil
		},
	}
	svc := newTestCommentService(nil, mockPins, nil)

	_, err := svc.GetByPinID(context.Background(), 999, nil, 0)

	if !errors.Is(err, model.ErrPinNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPinNotFound)
	}
}

// =============================================================================
// LIKE TESTS
// =============================================================================

func TestCommentService_ToggleLike(t *testing.T) {
	liked := false
	mockComments := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: commentID}, nil
		},
		toggleLikeFn: func(ctx context.Context, commentID, userID int64) (bool, error) {
			liked = !liked
			return liked, nil
		},
	}
	svc := newTestCommentService(mockComments, nil, nil)

	result, err := svc.ToggleLike(context.Background(), 100, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Liked || result.Message != "Liked" {
		t.Errorf("result = %+v, want liked", result)
	}

	result, _ = svc.ToggleLike(context.Background(), 100, 1)
	if result.Liked || result.Message != "Unliked" {
		t.Errorf("result = %+v, want unliked", result)
	}
}

func TestCommentService_ToggleLike_CommentMissing(t *testing.T) {
	svc := newTestCommentService(nil, nil, nil)

	_, err := svc.ToggleLike(context.Background(), 999, 1)

	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrCommentNotFound)
	}
}
