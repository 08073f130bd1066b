// Package hymns provides database operations for hymns and their verses,
// choruses and search.
//
// # Usage
//
//	repo := hymns.NewRepository(db.DB)
//	hymn, err := repo.GetByID(ctx, 42)
//
// Write paths that touch more than one table expect to be called on a
// transaction-bound repository obtained through WithTx.
package hymns

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Repository handles hymn persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new hymns repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func withContent(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Verses", func(db *gorm.DB) *gorm.DB {
			return db.Order("verse_order ASC")
		}).
		Preload("Chorus")
}

// Create inserts a hymn together with its verses and optional chorus.
func (r *Repository) Create(ctx context.Context, hymn *entities.Hymn) error {
	return r.db.WithContext(ctx).Create(hymn).Error
}

// GetByID retrieves a hymn with its verses (in order) and chorus.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Hymn, error) {
	var hymn entities.Hymn
	if err := withContent(r.db.WithContext(ctx)).First(&hymn, id).Error; err != nil {
		return nil, err
	}
	return &hymn, nil
}

// Exists reports whether a hymn with id exists.
func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Hymn{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns a page of hymns ordered by ID.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]entities.Hymn, error) {
	var hymns []entities.Hymn
	err := withContent(r.db.WithContext(ctx)).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&hymns).Error
	return hymns, err
}

// ListByBook returns hymns of one book ordered by number. A negative limit
// returns every hymn.
func (r *Repository) ListByBook(ctx context.Context, bookID uint, skip, limit int) ([]entities.Hymn, error) {
	var hymns []entities.Hymn
	q := withContent(r.db.WithContext(ctx)).
		Where("hymn_book_id = ?", bookID).
		Order("number ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit >= 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&hymns).Error
	return hymns, err
}

// SaveFields updates the hymn row only. Verses and chorus are managed by
// ReplaceVerses, UpsertChorus and DeleteChorus.
func (r *Repository) SaveFields(ctx context.Context, hymn *entities.Hymn) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(hymn).Error
}

// SyncVerses makes the stored verses of the hymn exactly match verses.
// Verses are matched by order: matching rows are updated in place, new
// orders are inserted, and orders no longer present are deleted. Writing the
// same set twice leaves rows and IDs unchanged.
func (r *Repository) SyncVerses(ctx context.Context, hymnID uint, verses []entities.Verse) error {
	db := r.db.WithContext(ctx)

	var existing []entities.Verse
	if err := db.Where("hymn_id = ?", hymnID).Find(&existing).Error; err != nil {
		return err
	}
	byOrder := make(map[int]entities.Verse, len(existing))
	for _, v := range existing {
		byOrder[v.Order] = v
	}

	keep := make(map[int]bool, len(verses))
	for _, v := range verses {
		keep[v.Order] = true
		if cur, ok := byOrder[v.Order]; ok {
			if cur.Tag == v.Tag && cur.Name == v.Name && cur.Text == v.Text {
				continue
			}
			cur.Tag, cur.Name, cur.Text = v.Tag, v.Name, v.Text
			if err := db.Save(&cur).Error; err != nil {
				return err
			}
			continue
		}
		row := entities.Verse{HymnID: hymnID, Order: v.Order, Tag: v.Tag, Name: v.Name, Text: v.Text}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	var stale []uint
	for _, v := range existing {
		if !keep[v.Order] {
			stale = append(stale, v.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return db.Where("id IN ?", stale).Delete(&entities.Verse{}).Error
}

// UpsertChorus sets the chorus text, creating the row if none exists.
func (r *Repository) UpsertChorus(ctx context.Context, hymnID uint, text string) (*entities.Chorus, error) {
	db := r.db.WithContext(ctx)

	var chorus entities.Chorus
	err := db.Where("hymn_id = ?", hymnID).First(&chorus).Error
	switch {
	case err == nil:
		chorus.Text = text
		if err := db.Save(&chorus).Error; err != nil {
			return nil, err
		}
	case err == gorm.ErrRecordNotFound:
		chorus = entities.Chorus{HymnID: hymnID, Text: text}
		if err := db.Create(&chorus).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &chorus, nil
}

// DeleteChorus removes the hymn's chorus, if any.
func (r *Repository) DeleteChorus(ctx context.Context, hymnID uint) error {
	return r.db.WithContext(ctx).Where("hymn_id = ?", hymnID).Delete(&entities.Chorus{}).Error
}

// DeleteDependents removes mappings on either side, verses and the chorus of
// the given hymns. The hymn rows themselves are left in place.
func (r *Repository) DeleteDependents(ctx context.Context, hymnIDs ...uint) error {
	if len(hymnIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)

	if err := db.Where("source_hymn_id IN ? OR target_hymn_id IN ?", hymnIDs, hymnIDs).
		Delete(&entities.HymnMapping{}).Error; err != nil {
		return err
	}
	if err := db.Where("hymn_id IN ?", hymnIDs).Delete(&entities.Verse{}).Error; err != nil {
		return err
	}
	return db.Where("hymn_id IN ?", hymnIDs).Delete(&entities.Chorus{}).Error
}
