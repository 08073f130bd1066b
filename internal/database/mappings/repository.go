// Package mappings provides database operations for hymn-to-hymn mappings.
package mappings

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Repository handles hymn mapping persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new mappings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a mapping. The pair is canonicalized before the write so no
// path can store (B, A) next to (A, B).
func (r *Repository) Create(ctx context.Context, m *entities.HymnMapping) error {
	m.Canonicalize()
	if m.RelationType == "" {
		m.RelationType = entities.DefaultRelationType
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// Save writes every column of m after canonicalizing the pair.
func (r *Repository) Save(ctx context.Context, m *entities.HymnMapping) error {
	m.Canonicalize()
	return r.db.WithContext(ctx).Save(m).Error
}

// GetByID retrieves a mapping by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.HymnMapping, error) {
	var m entities.HymnMapping
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns a page of mappings ordered by ID.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]entities.HymnMapping, error) {
	var ms []entities.HymnMapping
	err := r.db.WithContext(ctx).Order("id ASC").Offset(skip).Limit(limit).Find(&ms).Error
	return ms, err
}

// ForHymn returns every mapping with hymnID on either side.
func (r *Repository) ForHymn(ctx context.Context, hymnID uint) ([]entities.HymnMapping, error) {
	var ms []entities.HymnMapping
	err := r.db.WithContext(ctx).
		Where("source_hymn_id = ? OR target_hymn_id = ?", hymnID, hymnID).
		Order("id ASC").
		Find(&ms).Error
	return ms, err
}
