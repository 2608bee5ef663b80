package service

import (
	"context"
	"fmt"

	"pinboard/internal/model"
	"pinboard/internal/repository"
)

// BoardService handles board CRUD and enforces board visibility: a secret
// board is readable by its owner only.
type BoardService struct {
	boardRepo  repository.BoardRepository
	userRepo   repository.UserRepository
	pinService *PinService
}

func NewBoardService(
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	pinService *PinService,
) *BoardService {
	return &BoardService{
		boardRepo:  boardRepo,
		userRepo:   userRepo,
		pinService: pinService,
	}
}

// Create creates a new board owned by the user.
func (s *BoardService) Create(ctx context.Context, userID int64, req model.CreateBoardRequest) (*model.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	board := &model.Board{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		Category:    req.Category,
		Tags:        req.Tags,
		IsSecret:    req.IsSecret,
	}
	if board.Tags == nil {
		board.Tags = []string{}
	}

	if err := s.boardRepo.Create(ctx, board, req.Collaborators); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	return board, nil
}

// Get retrieves a board with its pins, owner and collaborators. A secret
// board is visible only to its owner; anyone else gets Forbidden.
func (s *BoardService) Get(ctx context.Context, boardID int64, viewerID *int64) (*model.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if board.IsSecret && (viewerID == nil || *viewerID != board.UserID) {
		return nil, model.ErrBoardSecret
	}

	pins, err := s.boardRepo.GetPins(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board pins: %w", err)
	}
	board.Pins = s.pinService.EnrichPins(ctx, pins, viewerID)
	if board.Pins == nil {
		board.Pins = []model.Pin{}
	}

	if owner, err := s.userRepo.GetByID(ctx, board.UserID); err == nil {
		board.Owner = &model.UserSummary{
			ID:              owner.ID,
			Username:        owner.Username,
			FirstName:       owner.FirstName,
			Surname:         owner.Surname,
			ProfileImageURL: owner.ProfileImageURL,
		}
	}

	if collaborators, err := s.boardRepo.GetCollaborators(ctx, boardID); err == nil {
		board.Collaborators = collaborators
	}

	return board, nil
}

// Update applies a partial board update. Owner only.
func (s *BoardService) Update(ctx context.Context, boardID, userID int64, req model.UpdateBoardRequest) (*model.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.UserID != userID {
		return nil, model.ErrNotBoardOwner
	}

	return s.boardRepo.Update(ctx, boardID, req)
}

// Delete removes a board. Owner only; the pins on it stay saved.
func (s *BoardService) Delete(ctx context.Context, boardID, userID int64) error {
	return s.boardRepo.Delete(ctx, boardID, userID)
}

// GetByUser lists a user's boards as seen by the viewer: the owner sees
// everything, others see public boards only.
func (s *BoardService) GetByUser(ctx context.Context, userID int64, viewerID *int64) ([]model.Board, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	publicOnly := viewerID == nil || *viewerID != userID
	return s.boardRepo.GetByUser(ctx, userID, publicOnly)
}
