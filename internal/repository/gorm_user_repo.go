package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user, assigning it a fresh id.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	l := log.Ctx(ctx)

	user.ID = uuid.New().String()
	if user.Role == "" {
		user.Role = domain.RoleViewer
	}

	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isDuplicateErr(result.Error) {
			return ErrDuplicateUser
		}
		l.Error().Err(result.Error).Msg("failed to create user in db")
		return result.Error
	}

	user.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldUserID, user.ID).Msg("user created in db")
	return nil
}

// GetByID retrieves a user by id.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List retrieves recent users.
func (r *GormUserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	l := log.Ctx(ctx)

	var models []domain.UserModel
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to list users from db")
		return nil, result.Error
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = *model.ToDomain()
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *GormUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite and mysql surface constraint violations as plain errors.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
