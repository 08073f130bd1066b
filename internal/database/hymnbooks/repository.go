// Package hymnbooks provides database operations for hymn books.
package hymnbooks

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Repository handles hymn book persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new hymn books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new hymn book.
func (r *Repository) Create(ctx context.Context, book *entities.HymnBook) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID retrieves a hymn book by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.HymnBook, error) {
	var book entities.HymnBook
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Exists reports whether a hymn book with id exists.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.HymnBook{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns a page of hymn books ordered by title.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]entities.HymnBook, error) {
	var books []entities.HymnBook
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Offset(skip).
		Limit(limit).
		Find(&books).Error
	return books, err
}

// Save writes every column of book.
func (r *Repository) Save(ctx context.Context, book *entities.HymnBook) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// HymnIDs returns the IDs of every hymn in the book.
func (r *Repository) HymnIDs(ctx context.Context, bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entities.Hymn{}).
		Where("hymn_book_id = ?", bookID).
		Pluck("id", &ids).Error
	return ids, err
}
