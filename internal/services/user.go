package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type RegisterUserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UserService interface {
	Register(ctx context.Context, tx *gorm.DB, in RegisterUserInput) (*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, firstName, lastName string) error
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (s *userService) Register(ctx context.Context, tx *gorm.DB, in RegisterUserInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", types.ErrValidation)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password", types.ErrValidation)
	}

	exists, err := s.userRepo.EmailExists(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", types.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, tx, []*types.User{{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *userService) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	found, err := s.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, types.ErrNotFound
	}
	return found[0], nil
}

func (s *userService) UpdateProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID, firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		return types.ErrValidation
	}
	return s.userRepo.UpdateProfile(ctx, tx, userID, firstName, lastName)
}

func (s *userService) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return s.userRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{userID})
}
