package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-admin-service/internal/domain/user"
	apperrors "user-admin-service/pkg/errors"
	"user-admin-service/pkg/logger"
	"user-admin-service/pkg/security"
)

// UserUsecase implements Usecase on top of a Repository. Reads load the whole
// collection and run it through domain.Query.
type UserUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New creates a new instance of UserUsecase.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log, validate: validator.New(), now: time.Now}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(field string, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(field, err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		if name == "" {
			name = field
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", name))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", name))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", name, e.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", name, e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", name))
		}
	}
	if field == "" && len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

// ListUsers returns the requested page of users matching the search text.
func (uc *UserUsecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := security.ValidateSearchQuery(in.Search); err != nil {
		log.Warn("rejected search text", zap.Error(err))
		return nil, err
	}

	sortBy, ok := domain.ParseSortField(in.SortBy)
	if !ok && in.SortBy != "" {
		log.Debug("ignoring unknown sort field", zap.String("sort_by", in.SortBy))
	}

	params := domain.QueryParams{
		Search:    in.Search,
		SortBy:    sortBy,
		SortOrder: domain.ParseSortOrder(in.SortOrder),
		PageIndex: in.PageIndex,
		PageSize:  in.PageSize,
	}

	all, err := uc.repo.ListAll(ctx)
	if err != nil {
		log.Error("failed to load users", zap.Error(err))
		return nil, err
	}

	res := domain.Query(all, params)
	log.Debug("listed users",
		zap.String("search", params.Search),
		zap.String("sort_by", string(params.SortBy)),
		zap.String("sort_order", string(params.SortOrder)),
		zap.Int("page_index", params.PageIndex),
		zap.Int("page_size", params.PageSize),
		zap.Int("total", res.Total),
	)

	return &ListUsersResponse{Data: res.Page, Total: res.Total}, nil
}

// GetUser retrieves a user by ID.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*domain.User, error) {
	if in.ID <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			logger.WithContext(ctx, uc.log).Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}
	return u, nil
}

// CreateUser validates the request and stores a new user. Role and status
// default to Viewer and Active.
func (uc *UserUsecase) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError("", err)
	}

	u := domain.NewUser(in.Name, in.Email, domain.Role(in.Role), domain.Status(in.Status), uc.now())
	created, err := uc.repo.Create(ctx, &u)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	log.Info("user created", zap.Int64("id", created.ID))
	return created, nil
}

// UpdateUser merges the supplied fields onto an existing user.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	if in.ID <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	patch, err := uc.buildPatch(in)
	if err != nil {
		log.Warn("validate failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	updated, err := uc.repo.Update(ctx, in.ID, patch)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	log.Info("user updated", zap.Int64("id", in.ID))
	return updated, nil
}

func (uc *UserUsecase) buildPatch(in UpdateUserRequest) (domain.UserPatch, error) {
	var patch domain.UserPatch

	if in.Name != nil {
		if err := uc.validate.Var(*in.Name, "required,max=100"); err != nil {
			return patch, formatValidationError("Name", err)
		}
		patch.Name = in.Name
	}
	if in.Email != nil {
		if err := uc.validate.Var(*in.Email, "required,email"); err != nil {
			return patch, formatValidationError("Email", err)
		}
		patch.Email = in.Email
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		if !role.Valid() {
			return patch, apperrors.NewValidationError("Role", "Role must be one of: Admin Editor Viewer")
		}
		patch.Role = &role
	}
	if in.Status != nil {
		status := domain.Status(*in.Status)
		if !status.Valid() {
			return patch, apperrors.NewValidationError("Status", "Status must be one of: Active Inactive")
		}
		patch.Status = &status
	}
	return patch, nil
}

// DeleteUser removes a user. Deleting an unknown id is a NotFoundError.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	log := logger.WithContext(ctx, uc.log)

	if in.ID <= 0 {
		return apperrors.NewValidationError("id", "invalid user id")
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		if !apperrors.IsNotFound(err) {
			log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return err
	}

	log.Info("user deleted", zap.Int64("id", in.ID))
	return nil
}
