// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetActiveByID(ctx, id)
package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save writes every column of user.
func (r *Repository) Save(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// GetByID retrieves a user by ID, including soft-deleted ones.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveByID retrieves an active user by ID.
func (r *Repository) GetActiveByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByLogin retrieves a user by username or email.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is taken by a
// user other than excludeID. Pass 0 to check against every user.
func (r *Repository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("(username = ? OR email = ?)", username, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListActive returns a page of active users ordered by ID.
func (r *Repository) ListActive(ctx context.Context, skip, limit int) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Count returns the number of users, active or not.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}
