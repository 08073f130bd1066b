package hymnal

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/entities"
	"github.com/mrlokans/hymnal/internal/optional"
)

type CreateHymnInput struct {
	Number     int          `json:"number" binding:"required,gt=0"`
	Title      string       `json:"title" binding:"required,max=512"`
	HymnBookID uint         `json:"hymn_book_id" binding:"required"`
	VariantKey *string      `json:"variant_key" binding:"omitempty,max=100"`
	Verses     []VerseInput `json:"verses" binding:"required,min=1,dive"`
	Chorus     *string      `json:"chorus"`
}

// UpdateHymnInput is a partial update. Verses, when present, replace the
// whole set. Chorus present as null removes the chorus.
type UpdateHymnInput struct {
	Number     optional.Value[int]          `json:"number"`
	Title      optional.Value[string]       `json:"title"`
	HymnBookID optional.Value[uint]         `json:"hymn_book_id"`
	VariantKey optional.Value[string]       `json:"variant_key"`
	Verses     optional.Value[[]VerseInput] `json:"verses"`
	Chorus     optional.Value[string]       `json:"chorus"`
}

func (s *Service) requireBook(ctx context.Context, tx *gorm.DB, id uint) error {
	exists, err := s.books.WithTx(tx).Exists(ctx, id)
	if err != nil {
		return apperr.FromDB(err, "hymn book")
	}
	if !exists {
		return apperr.NotFound("hymn book")
	}
	return nil
}

// CreateHymn stores a hymn with exactly the supplied verses and optional
// chorus.
func (s *Service) CreateHymn(ctx context.Context, actor *entities.User, in CreateHymnInput) (*entities.Hymn, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := ValidateNumber(in.Number); err != nil {
		return nil, err
	}
	if err := ValidateTitle(in.Title, MaxTitleLength); err != nil {
		return nil, err
	}
	if err := ValidateContent(HymnContent{Verses: in.Verses, Chorus: in.Chorus}); err != nil {
		return nil, err
	}

	hymn := &entities.Hymn{
		Number:     in.Number,
		Title:      in.Title,
		HymnBookID: in.HymnBookID,
		VariantKey: in.VariantKey,
		Verses:     versesOf(in.Verses),
	}
	if in.Chorus != nil {
		hymn.Chorus = &entities.Chorus{Text: *in.Chorus}
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.requireBook(ctx, tx, in.HymnBookID); err != nil {
			return err
		}
		if err := s.hymns.WithTx(tx).Create(ctx, hymn); err != nil {
			if apperr.Is(apperr.FromDB(err, "hymn"), apperr.KindConflict) {
				return apperr.Conflict(fmt.Sprintf("hymn number %d already exists in this book", in.Number))
			}
			return apperr.FromDB(err, "hymn")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditCreateHymn,
			Details:  fmt.Sprintf("Created hymn %d %q in book %d", hymn.Number, hymn.Title, hymn.HymnBookID),
			Metadata: map[string]any{"hymn_id": hymn.ID, "hymn_book_id": hymn.HymnBookID},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetHymn(ctx, hymn.ID)
}

// GetHymn returns a hymn with verses in order and its chorus.
func (s *Service) GetHymn(ctx context.Context, id uint) (*entities.Hymn, error) {
	hymn, err := s.hymns.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	return hymn, nil
}

func (s *Service) ListHymns(ctx context.Context, skip, limit int) ([]entities.Hymn, error) {
	hymns, err := s.hymns.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	return hymns, nil
}

// ListHymnsByBook returns every hymn of a book ordered by number.
func (s *Service) ListHymnsByBook(ctx context.Context, bookID uint) ([]entities.Hymn, error) {
	if _, err := s.GetHymnBook(ctx, bookID); err != nil {
		return nil, err
	}
	hymns, err := s.hymns.ListByBook(ctx, bookID, 0, -1)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	return hymns, nil
}

// UpdateHymn applies the fields present in in and re-validates the merged
// result. Applying the same input twice leaves the same stored state.
func (s *Service) UpdateHymn(ctx context.Context, actor *entities.User, id uint, in UpdateHymnInput) (*entities.Hymn, error) {
	for field, null := range map[string]bool{
		"number":       in.Number.IsNull(),
		"title":        in.Title.IsNull(),
		"hymn_book_id": in.HymnBookID.IsNull(),
		"verses":       in.Verses.IsNull(),
	} {
		if null {
			return nil, apperr.ValidationField(field, "must not be null")
		}
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.hymns.WithTx(tx)

		hymn, err := repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn")
		}

		changed := []string{}
		if v, ok := in.Number.Get(); ok {
			hymn.Number = v
			changed = append(changed, "number")
		}
		if v, ok := in.Title.Get(); ok {
			hymn.Title = strings.TrimSpace(v)
			changed = append(changed, "title")
		}
		if v, ok := in.HymnBookID.Get(); ok {
			if v != hymn.HymnBookID {
				if err := s.requireBook(ctx, tx, v); err != nil {
					return err
				}
			}
			hymn.HymnBookID = v
			changed = append(changed, "hymn_book_id")
		}
		if in.VariantKey.IsSet() {
			hymn.VariantKey = in.VariantKey.Ptr()
			changed = append(changed, "variant_key")
		}

		content := ContentOf(hymn)
		if v, ok := in.Verses.Get(); ok {
			content.Verses = v
			changed = append(changed, "verses")
		}
		if in.Chorus.IsSet() {
			content.Chorus = in.Chorus.Ptr()
			changed = append(changed, "chorus")
		}

		if err := ValidateNumber(hymn.Number); err != nil {
			return err
		}
		if err := ValidateTitle(hymn.Title, MaxTitleLength); err != nil {
			return err
		}
		if err := ValidateContent(content); err != nil {
			return err
		}

		if err := repo.SaveFields(ctx, hymn); err != nil {
			if apperr.Is(apperr.FromDB(err, "hymn"), apperr.KindConflict) {
				return apperr.Conflict(fmt.Sprintf("hymn number %d already exists in this book", hymn.Number))
			}
			return apperr.FromDB(err, "hymn")
		}
		if in.Verses.IsSet() {
			if err := repo.SyncVerses(ctx, hymn.ID, versesOf(content.Verses)); err != nil {
				return apperr.FromDB(err, "verse")
			}
		}
		if in.Chorus.IsSet() {
			if content.Chorus == nil {
				err = repo.DeleteChorus(ctx, hymn.ID)
			} else {
				_, err = repo.UpsertChorus(ctx, hymn.ID, *content.Chorus)
			}
			if err != nil {
				return apperr.FromDB(err, "chorus")
			}
		}

		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateHymn,
			Details:  fmt.Sprintf("Updated hymn %d: %s", hymn.ID, strings.Join(changed, ", ")),
			Metadata: map[string]any{"hymn_id": hymn.ID, "fields": changed},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetHymn(ctx, id)
}

// DeleteHymn removes the hymn together with its verses, chorus and every
// mapping that references it.
func (s *Service) DeleteHymn(ctx context.Context, actor *entities.User, id uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.hymns.WithTx(tx)

		hymn, err := repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if err := repo.DeleteDependents(ctx, hymn.ID); err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if err := database.Remove(tx.WithContext(ctx), hymn); err != nil {
			return apperr.FromDB(err, "hymn")
		}

		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditDeleteHymn,
			Details:  fmt.Sprintf("Deleted hymn %d %q", hymn.Number, hymn.Title),
			Metadata: map[string]any{"hymn_id": hymn.ID, "hymn_book_id": hymn.HymnBookID},
		})
	})
}
