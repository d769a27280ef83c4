package user

import domain "user-admin-service/internal/domain/user"

// ListUsersRequest carries the query string of a list call. SortBy and
// SortOrder are raw column and direction names; unknown values mean no sort
// and ascending order.
type ListUsersRequest struct {
	Search    string
	SortBy    string
	SortOrder string
	PageIndex int
	PageSize  int
}

// ListUsersResponse is one page of users and the total number of matches.
type ListUsersResponse struct {
	Data  []domain.User `json:"data"`
	Total int           `json:"total"`
}

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"omitempty,oneof=Admin Editor Viewer"`
	Status string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// UpdateUserRequest holds a partial update. Nil fields are left untouched.
type UpdateUserRequest struct {
	ID     int64   `json:"-"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}
