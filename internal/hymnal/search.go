package hymnal

import (
	"context"
	"strings"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/database/hymns"
)

// SearchQuery holds the optional search filters. Title may also be a
// number, in which case it matches hymn numbers as text.
type SearchQuery struct {
	Title      string
	Number     *int
	HymnBookID *uint
	Skip       int
	Limit      int
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Search looks hymns up by their structured fields first. When that finds
// nothing and a title was given, it searches verse and chorus text instead.
// The second stage replaces the first; results are never merged.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]hymns.SearchResult, error) {
	title := strings.TrimSpace(q.Title)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	filter := hymns.SearchFilter{
		Title:         title,
		Number:        q.Number,
		HymnBookID:    q.HymnBookID,
		Skip:          q.Skip,
		Limit:         limit,
		OrderByNumber: q.HymnBookID != nil || isNumeric(title),
	}

	results, err := s.hymns.SearchFields(ctx, filter)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	if len(results) > 0 || title == "" {
		return results, nil
	}

	results, err = s.hymns.SearchContent(ctx, filter)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	return results, nil
}

// SearchByTitle is Search on title alone that reports an empty result as
// not found.
func (s *Service) SearchByTitle(ctx context.Context, title string, skip, limit int) ([]hymns.SearchResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.ValidationField("title", "must not be empty")
	}
	results, err := s.Search(ctx, SearchQuery{Title: title, Skip: skip, Limit: limit})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.NotFound("hymn")
	}
	return results, nil
}

// SearchInBook searches a single book. The results are ordered by number.
func (s *Service) SearchInBook(ctx context.Context, bookID uint, query string, skip, limit int) ([]hymns.SearchResult, error) {
	if _, err := s.GetHymnBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.Search(ctx, SearchQuery{Title: query, HymnBookID: &bookID, Skip: skip, Limit: limit})
}

// Variants returns other versions of a hymn: hymns sharing its variant key,
// or hymns with a matching title when it has none.
func (s *Service) Variants(ctx context.Context, id uint) ([]hymns.SearchResult, error) {
	hymn, err := s.hymns.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	results, err := s.hymns.Variants(ctx, hymn.ID, hymn.Title, hymn.VariantKey)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	return results, nil
}
