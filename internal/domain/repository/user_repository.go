package repository

import (
	"context"

	"dispatch-service/internal/domain/entity"
)

// UserRepository defines storage access for users.
//
// Lookups return a NOT_FOUND DomainError when no row matches; Create
// returns an ALREADY_EXISTS DomainError on an email conflict.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
}
