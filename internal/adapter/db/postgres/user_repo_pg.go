package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-service/internal/domain/user"
	apperrors "user-admin-service/pkg/errors"
)

// UserRepoPG implements the record store on top of GORM. It runs against
// PostgreSQL in production and SQLite for local setups and tests.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"size:100;not null"`
	Email   string `gorm:"not null;index"`
	Role    string `gorm:"size:16;not null"`
	Status  string `gorm:"size:16;not null"`
	Created string `gorm:"column:created_at;size:32;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    string(u.Role),
		Status:  string(u.Status),
		Created: u.CreatedAt,
	}
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      user.Role(m.Role),
		Status:    user.Status(m.Status),
		CreatedAt: m.Created,
	}
}

// ListAll returns every user ordered by id.
func (r *UserRepoPG) ListAll(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}
	return users, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	u := model.toDomain()
	return &u, nil
}

// Create inserts a new user and returns it with the generated id.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Debug("user created in db", zap.Int64("id", model.ID))
	created := model.toDomain()
	return &created, nil
}

// Update merges patch onto the stored row inside a transaction.
func (r *UserRepoPG) Update(ctx context.Context, id int64, patch user.UserPatch) (*user.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	var updated user.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}

		updated = model.toDomain()
		updated.Apply(patch)

		next := toSchema(&updated)
		return tx.Save(&next).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to update user", err)
	}

	return &updated, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return apperrors.NewInternalError("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}

	r.log.Debug("user deleted in db", zap.Int64("id", id))
	return nil
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}
