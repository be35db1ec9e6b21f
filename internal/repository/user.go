package repository

import (
	"context"
	"errors"
	"strings"

	"cookconnect/internal/cache"
	"cookconnect/internal/models"
	"cookconnect/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines interface for user operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	// UpdateProfile writes only the profile columns, so a user read from
	// the cache (which never carries the password hash) is safe to pass.
	UpdateProfile(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

// GetByID is cached. The password hash is never serialized, so cached users
// cannot be used for credential checks; login goes through GetByEmail.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.CacheAside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return classify(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, classify(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id != ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, classify(err, "User", username)
	}
	return count > 0, nil
}

func (r *userRepository) EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, classify(err, "User", username)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return classify(err, "User", nil)
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(user).
		Select("username", "firstname", "lastname", "bio", "avatar_url", "updated_at").
		Updates(user).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return classify(err, "User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	r.log.LogUpdate(ctx, map[string]any{"user_id": user.ID})
	return nil
}
