package hymnal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/entities"
	"github.com/mrlokans/hymnal/internal/optional"
	"github.com/mrlokans/hymnal/internal/storage"
)

const MaxBookTitleLength = 255

// UpdateHymnBookInput is a partial update; absent fields are left unchanged.
type UpdateHymnBookInput struct {
	Title optional.Value[string] `json:"title"`
}

// CreateHymnBook stores a new hymn book with a unique title.
func (s *Service) CreateHymnBook(ctx context.Context, actor *entities.User, title string) (*entities.HymnBook, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title, MaxBookTitleLength); err != nil {
		return nil, err
	}

	book := &entities.HymnBook{Title: title}
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.books.WithTx(tx).Create(ctx, book); err != nil {
			return apperr.FromDB(err, "hymn book")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditCreateHymnBook,
			Details:  fmt.Sprintf("Created hymn book %q", book.Title),
			Metadata: map[string]any{"hymn_book_id": book.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Service) GetHymnBook(ctx context.Context, id uint) (*entities.HymnBook, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn book")
	}
	return book, nil
}

// ListHymnBooks returns a page of hymn books ordered by title.
func (s *Service) ListHymnBooks(ctx context.Context, skip, limit int) ([]entities.HymnBook, error) {
	books, err := s.books.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn book")
	}
	return books, nil
}

// UpdateHymnBook applies the fields present in in.
func (s *Service) UpdateHymnBook(ctx context.Context, actor *entities.User, id uint, in UpdateHymnBookInput) (*entities.HymnBook, error) {
	var book *entities.HymnBook
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.books.WithTx(tx)

		var err error
		book, err = repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn book")
		}

		if in.Title.IsNull() {
			return apperr.ValidationField("title", "must not be null")
		}
		if title, ok := in.Title.Get(); ok {
			title = strings.TrimSpace(title)
			if err := ValidateTitle(title, MaxBookTitleLength); err != nil {
				return err
			}
			book.Title = title
		}

		if err := repo.Save(ctx, book); err != nil {
			return apperr.FromDB(err, "hymn book")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateHymnBook,
			Details:  fmt.Sprintf("Updated hymn book %d", book.ID),
			Metadata: map[string]any{"hymn_book_id": book.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteHymnBook removes the book, every hymn in it and their verses,
// choruses and mappings. The thumbnail file is removed afterwards on a best
// effort basis.
func (s *Service) DeleteHymnBook(ctx context.Context, actor *entities.User, id uint) error {
	var thumbnail *string
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)

		book, err := books.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn book")
		}
		thumbnail = book.ThumbnailPath

		hymnIDs, err := books.HymnIDs(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if err := s.hymns.WithTx(tx).DeleteDependents(ctx, hymnIDs...); err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if err := tx.WithContext(ctx).Where("hymn_book_id = ?", id).Delete(&entities.Hymn{}).Error; err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if err := database.Remove(tx.WithContext(ctx), book); err != nil {
			return apperr.FromDB(err, "hymn book")
		}

		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditDeleteHymnBook,
			Details:  fmt.Sprintf("Deleted hymn book %q with %d hymns", book.Title, len(hymnIDs)),
			Metadata: map[string]any{"hymn_book_id": book.ID, "hymn_ids": hymnIDs},
		})
	})
	if err != nil {
		return err
	}

	s.removeBlob(ctx, thumbnail)
	return nil
}

// UpdateHymnBookThumbnail stores a JPEG or PNG image and points the book at
// it. The file write is not transactional with the row update; a failed
// update leaves the new file orphaned.
func (s *Service) UpdateHymnBookThumbnail(ctx context.Context, actor *entities.User, id uint, data []byte, contentType string) (*entities.HymnBook, error) {
	ext, err := storage.ImageExtension(contentType)
	if err != nil {
		return nil, apperr.ValidationField("file", "only JPEG and PNG images are allowed")
	}
	if _, err := s.GetHymnBook(ctx, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("thumbnails/book_%d_%s.%s", id, uuid.NewString(), ext)
	path, err := s.blobs.Save(ctx, key, data, contentType)
	if err != nil {
		return nil, apperr.Internal("failed to store thumbnail", err)
	}

	var book *entities.HymnBook
	var previous *string
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.books.WithTx(tx)

		var err error
		book, err = repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn book")
		}
		previous = book.ThumbnailPath
		book.ThumbnailPath = &path

		if err := repo.Save(ctx, book); err != nil {
			return apperr.FromDB(err, "hymn book")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateHymnBookThumbnail,
			Details:  fmt.Sprintf("Updated thumbnail of hymn book %d", book.ID),
			Metadata: map[string]any{"hymn_book_id": book.ID, "path": path},
		})
	})
	if err != nil {
		return nil, err
	}

	s.removeBlob(ctx, previous)
	return book, nil
}
