package user

import (
	"context"

	domain "user-admin-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*domain.User, error)
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) error
}

// Repository is the record store. ListAll returns the whole collection in
// store order; Update and Delete report a missing id as a NotFoundError.
type Repository interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
