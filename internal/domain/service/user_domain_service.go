package service

import (
	"context"
	"fmt"

	"dispatch-service/internal/domain/entity"
	"dispatch-service/internal/domain/repository"
)

// UserDomainService holds user rules that need storage access but belong
// to no single use case.
type UserDomainService struct {
	users repository.UserRepository
}

func NewUserDomainService(users repository.UserRepository) *UserDomainService {
	return &UserDomainService{users: users}
}

// EnsureEmailUnique fails with ALREADY_EXISTS when the email is taken.
func (s *UserDomainService) EnsureEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		return entity.NewAlreadyExistsError("User", "email="+email)
	}
	return nil
}

// EnsureUserExists loads the user or fails with NOT_FOUND.
func (s *UserDomainService) EnsureUserExists(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}
