package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
}

func NewUserService(repo repositories.Repository, v *validator.Validator, logger utils.Logger) UserService {
	return &userService{repo: repo, validator: v, logger: logger}
}

// Register creates a user, or for students resolves their token. Student
// registration is idempotent: re-registering returns the token assigned the
// first time. Librarian usernames are claimed exactly once.
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*models.RegisterResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.Users().GetByUsername(ctx, req.Username)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if existing != nil {
		return s.registerExisting(ctx, req, existing)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if req.Role == models.RoleStudent {
		user.Token = uuid.NewString()
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)

	return &models.RegisterResult{
		Message: capitalizeRole(req.Role) + " registered successfully",
		UserID:  user.ID,
		Role:    user.Role,
		Token:   user.Token,
	}, nil
}

func (s *userService) registerExisting(ctx context.Context, req *RegisterRequest, user *models.User) (*models.RegisterResult, error) {
	if req.Role == models.RoleLibrarian {
		return nil, ErrLibrarianExists
	}

	// Students get their original token back. Users created before token
	// issuance have one minted on the spot.
	if user.Token != "" {
		return &models.RegisterResult{
			Message:           "Student already registered",
			UserID:            user.ID,
			Token:             user.Token,
			AlreadyRegistered: true,
		}, nil
	}

	user.Token = uuid.NewString()
	if err := s.repo.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Info("token generated for existing student", "user_id", user.ID)

	return &models.RegisterResult{
		Message:           "Student already registered, token generated",
		UserID:            user.ID,
		Token:             user.Token,
		AlreadyRegistered: true,
	}, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*models.LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByUsername(ctx, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	result := &models.LoginResult{
		Message: "Login successful",
		UserID:  user.ID,
		Role:    user.Role,
	}
	if user.Role == models.RoleStudent {
		result.Token = user.Token
	}
	return result, nil
}

func capitalizeRole(r models.UserRole) string {
	switch r {
	case models.RoleStudent:
		return "Student"
	case models.RoleLibrarian:
		return "Librarian"
	}
	return string(r)
}
