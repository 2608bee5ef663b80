package service

import (
	"context"
	"errors"
	"testing"

	"pinboard/internal/model"
)

func newTestBoardService(boardRepo *mockBoardRepository, userRepo *mockUserRepository, pinRepo *mockPinRepository) *BoardService {
	if boardRepo == nil {
		boardRepo = &mockBoardRepository{}
	}
	if userRepo == nil {
		userRepo = &mockUserRepository{}
	}
	if pinRepo == nil {
		pinRepo = &mockPinRepository{}
	}
	return NewBoardService(boardRepo, userRepo, NewPinService(pinRepo, userRepo, nil))
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestBoardService_Create_Success(t *testing.T) {
	var gotCollaborators []int64
	mockBoards := &mockBoardRepository{
		createFn: func(ctx context.Context, board *model.Board, collaboratorIDs []int64) error {
			board.ID = 10
			gotCollaborators = collaboratorIDs
			return nil
		},
	}
	svc := newTestBoardService(mockBoards, nil, nil)

	board, err := svc.Create(context.Background(), 1, model.CreateBoardRequest{
		Title:         "Kitchen remodel",
		Collaborators: []int64{2, 3},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board.ID != 10 {
		t.Errorf("board ID = %d, want 10", board.ID)
	}
	if board.Category != model.CategoryOther {
		t.Errorf("category = %q, want default %q", board.Category, model.CategoryOther)
	}
	if board.Tags == nil {
		t.Error("tags should default to an empty slice")
	}
	if len(gotCollaborators) != 2 {
		t.Errorf("collaborators = %v, want [2 3]", gotCollaborators)
	}
}

func TestBoardService_Create_Validation(t *testing.T) {
	svc := newTestBoardService(nil, nil, nil)

	_, err := svc.Create(context.Background(), 1, model.CreateBoardRequest{
		Title:    "",
		Category: "NotACategory",
	})

	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if len(vErr.Fields) != 2 {
		t.Errorf("fields = %v, want [title category]", vErr.Fields)
	}
}

// =============================================================================
// VISIBILITY TESTS
// =============================================================================

func TestBoardService_Get_SecretBoard(t *testing.T) {
	owner := int64(1)
	stranger := int64(2)

	secretBoard := func(ctx context.Context, boardID int64) (*model.Board, error) {
		return &model.Board{ID: boardID, UserID: owner, IsSecret: true}, nil
	}

	tests := []struct {
		name     string
		viewerID *int64
		wantErr  error
	}{
		{name: "owner sees it", viewerID: &owner, wantErr: nil},
		{name: "stranger gets forbidden", viewerID: &stranger, wantErr: model.ErrBoardSecret},
		{name: "anonymous gets forbidden", viewerID: nil, wantErr: model.ErrBoardSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBoards := &mockBoardRepository{getByIDFn: secretBoard}
			svc := newTestBoardService(mockBoards, nil, nil)

			board, err := svc.Get(context.Background(), 10, tt.viewerID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if board != nil {
					t.Error("expected nil board")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if board.Pins == nil {
				t.Error("pins should be an empty slice, not nil")
			}
		})
	}
}

func TestBoardService_Get_AttachesPinsAndOwner(t *testing.T) {
	mockBoards := &mockBoardRepository{
		getByIDFn: func(ctx context.Context, boardID int64) (*model.Board, error) {
			return &model.Board{ID: boardID, UserID: 1}, nil
		},
		getPinsFn: func(ctx context.Context, boardID int64) ([]model.Pin, error) {
			return []model.Pin{{ID: 42, UserID: 1}, {ID: 43, UserID: 1}}, nil
		},
		getCollaboratorsFn: func(ctx context.Context, boardID int64) ([]model.UserSummary, error) {
			return []model.UserSummary{{ID: 2, Username: "helper"}}, nil
		},
	}
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "owner"}, nil
		},
	}
	svc := newTestBoardService(mockBoards, mockUsers, nil)

	board, err := svc.Get(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(board.Pins) != 2 {
		t.Errorf("pins = %d, want 2", len(board.Pins))
	}
	if board.Owner == nil || board.Owner.Username != "owner" {
		t.Error("expected owner summary attached")
	}
	if len(board.Collaborators) != 1 {
		t.Errorf("collaborators = %d, want 1", len(board.Collaborators))
	}
}

// =============================================================================
// UPDATE / LIST TESTS
// =============================================================================

func TestBoardService_Update_NotOwner(t *testing.T) {
	mockBoards := &mockBoardRepository{
		getByIDFn: func(ctx context.Context, boardID int64) (*model.Board, error) {
			return &model.Board{ID: boardID, UserID: 1}, nil
		},
	}
	svc := newTestBoardService(mockBoards, nil, nil)

	_, err := svc.Update(context.Background(), 10, 2, model.UpdateBoardRequest{})

	if !errors.Is(err, model.ErrNotBoardOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotBoardOwner)
	}
	if mockBoards.updateCalls != 0 {
		t.Error("Update should not reach the repository for a non-owner")
	}
}

func TestBoardService_GetByUser_Visibility(t *testing.T) {
	owner := int64(1)
	stranger := int64(2)

	tests := []struct {
		name           string
		viewerID       *int64
		wantPublicOnly bool
	}{
		{name: "owner sees all", viewerID: &owner, wantPublicOnly: false},
		{name: "stranger sees public", viewerID: &stranger, wantPublicOnly: true},
		{name: "anonymous sees public", viewerID: nil, wantPublicOnly: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPublicOnly bool
			mockBoards := &mockBoardRepository{
				getByUserFn: func(ctx context.Context, userID int64, publicOnly bool) ([]model.Board, error) {
					gotPublicOnly = publicOnly
					return nil, nil
				},
			}
			mockUsers := &mockUserRepository{
				getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
					return &model.User{ID: id}, nil
				},
			}
			svc := newTestBoardService(mockBoards, mockUsers, nil)

			if _, err := svc.GetByUser(context.Background(), owner, tt.viewerID); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotPublicOnly != tt.wantPublicOnly {
				t.Errorf("publicOnly = %v, want %v", gotPublicOnly, tt.wantPublicOnly)
			}
		})
	}
}

func TestBoardService_GetByUser_UnknownUser(t *testing.T) {
	svc := newTestBoardService(nil, &mockUserRepository{}, nil)

	_, err := svc.GetByUser(context.Background(), 999, nil)

	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}
