package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"pinboard/internal/model"
	"pinboard/internal/repository"
)

// UserService handles business logic for user accounts and profiles.
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	boardRepo  repository.BoardRepository

	defaultAvatarURL string
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository, boardRepo repository.BoardRepository, defaultAvatarURL string) *UserService {
	return &UserService{
		repo:             repo,
		followRepo:       followRepo,
		boardRepo:        boardRepo,
		defaultAvatarURL: defaultAvatarURL,
	}
}

// Register creates a new user account. Email and username must both be
// unique; the two checks run separately so the client learns which one
// collided.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:      req.FirstName,
		Email:          req.Email,
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
	}
	if req.Surname != "" {
		user.Surname = &req.Surname
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = req.ProfileImageURL
	} else if s.defaultAvatarURL != "" {
		url := s.defaultAvatarURL
		user.ProfileImageURL = &url
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user by email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether the email is registered
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile as seen by the viewer. The board
// list is filtered: the owner sees all their boards, everyone else sees
// public boards only.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	publicOnly := viewerID == nil || *viewerID != userID
	boards, err := s.boardRepo.GetByUser(ctx, userID, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("get boards: %w", err)
	}

	profile := &model.ProfileResponse{
		User:   user,
		Boards: boards,
	}

	if viewerID != nil && *viewerID != userID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID)
		if err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// UpdateProfile applies a partial profile update; nil fields keep their
// current values.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, bio, profileImageURL *string) (*model.User, error) {
	if bio != nil && len(*bio) > model.MaxBioLength {
		return nil, &model.ValidationError{Fields: []string{"bio"}}
	}
	return s.repo.UpdateProfile(ctx, userID, bio, profileImageURL)
}

// Delete removes the user's account. All owned content cascades.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return s.repo.Delete(ctx, userID)
}
