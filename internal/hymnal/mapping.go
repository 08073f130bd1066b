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

// CanonicalPair orders two hymn IDs so the smaller one is the source.
func CanonicalPair(a, b uint) (source, target uint) {
	if a > b {
		return b, a
	}
	return a, b
}

type CreateMappingInput struct {
	SourceHymnID uint    `json:"source_hymn_id" binding:"required"`
	TargetHymnID uint    `json:"target_hymn_id" binding:"required"`
	RelationType string  `json:"relation_type" binding:"max=50"`
	Note         *string `json:"note"`
}

// UpdateMappingInput is a partial update. Note present as null clears it.
type UpdateMappingInput struct {
	SourceHymnID optional.Value[uint]   `json:"source_hymn_id"`
	TargetHymnID optional.Value[uint]   `json:"target_hymn_id"`
	RelationType optional.Value[string] `json:"relation_type"`
	Note         optional.Value[string] `json:"note"`
}

func validatePair(source, target uint) error {
	if source == 0 || target == 0 {
		return apperr.Validation("hymn ids are required", map[string]string{
			"source_hymn_id": "must be a positive id",
			"target_hymn_id": "must be a positive id",
		})
	}
	if source == target {
		return apperr.ValidationField("target_hymn_id", "a hymn cannot be mapped to itself")
	}
	return nil
}

func (s *Service) requireHymns(ctx context.Context, tx *gorm.DB, ids ...uint) error {
	repo := s.hymns.WithTx(tx)
	for _, id := range ids {
		exists, err := repo.Exists(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "hymn")
		}
		if !exists {
			return apperr.NotFound(fmt.Sprintf("hymn %d", id))
		}
	}
	return nil
}

// CreateMapping relates two existing hymns. The pair is stored in canonical
// order; an existing pair in either order is a conflict.
func (s *Service) CreateMapping(ctx context.Context, actor *entities.User, in CreateMappingInput) (*entities.HymnMapping, error) {
	if err := validatePair(in.SourceHymnID, in.TargetHymnID); err != nil {
		return nil, err
	}
	source, target := CanonicalPair(in.SourceHymnID, in.TargetHymnID)

	relation := strings.TrimSpace(in.RelationType)
	if relation == "" {
		relation = entities.DefaultRelationType
	}
	m := &entities.HymnMapping{
		SourceHymnID: source,
		TargetHymnID: target,
		RelationType: relation,
		Note:         in.Note,
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.requireHymns(ctx, tx, source, target); err != nil {
			return err
		}
		if err := s.mappings.WithTx(tx).Create(ctx, m); err != nil {
			return apperr.FromDB(err, "mapping")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditCreateMapping,
			Details:  fmt.Sprintf("Mapped hymn %d to hymn %d (%s)", m.SourceHymnID, m.TargetHymnID, m.RelationType),
			Metadata: map[string]any{"mapping_id": m.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMapping(ctx context.Context, id uint) (*entities.HymnMapping, error) {
	m, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "mapping")
	}
	return m, nil
}

func (s *Service) ListMappings(ctx context.Context, skip, limit int) ([]entities.HymnMapping, error) {
	ms, err := s.mappings.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "mapping")
	}
	return ms, nil
}

// MappingsForHymn returns mappings where the hymn is on either side.
func (s *Service) MappingsForHymn(ctx context.Context, hymnID uint) ([]entities.HymnMapping, error) {
	ms, err := s.mappings.ForHymn(ctx, hymnID)
	if err != nil {
		return nil, apperr.FromDB(err, "mapping")
	}
	return ms, nil
}

// UpdateMapping applies the fields present in in and re-canonicalizes the
// pair.
func (s *Service) UpdateMapping(ctx context.Context, actor *entities.User, id uint, in UpdateMappingInput) (*entities.HymnMapping, error) {
	if in.SourceHymnID.IsNull() || in.TargetHymnID.IsNull() || in.RelationType.IsNull() {
		return nil, apperr.Validation("fields must not be null", nil)
	}

	var m *entities.HymnMapping
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.mappings.WithTx(tx)

		var err error
		m, err = repo.GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "mapping")
		}

		source, target := m.SourceHymnID, m.TargetHymnID
		if v, ok := in.SourceHymnID.Get(); ok {
			source = v
		}
		if v, ok := in.TargetHymnID.Get(); ok {
			target = v
		}
		if err := validatePair(source, target); err != nil {
			return err
		}
		if source != m.SourceHymnID || target != m.TargetHymnID {
			if err := s.requireHymns(ctx, tx, source, target); err != nil {
				return err
			}
		}
		m.SourceHymnID, m.TargetHymnID = CanonicalPair(source, target)

		if v, ok := in.RelationType.Get(); ok {
			v = strings.TrimSpace(v)
			if v == "" {
				v = entities.DefaultRelationType
			}
			m.RelationType = v
		}
		if in.Note.IsSet() {
			m.Note = in.Note.Ptr()
		}

		if err := repo.Save(ctx, m); err != nil {
			return apperr.FromDB(err, "mapping")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditUpdateMapping,
			Details:  fmt.Sprintf("Updated mapping %d", m.ID),
			Metadata: map[string]any{"mapping_id": m.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMapping(ctx context.Context, actor *entities.User, id uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		m, err := s.mappings.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "mapping")
		}
		if err := database.Remove(tx.WithContext(ctx), m); err != nil {
			return apperr.FromDB(err, "mapping")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditDeleteMapping,
			Details:  fmt.Sprintf("Deleted mapping %d between hymns %d and %d", m.ID, m.SourceHymnID, m.TargetHymnID),
			Metadata: map[string]any{"mapping_id": m.ID},
		})
	})
}
