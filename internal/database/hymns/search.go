package hymns

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// SearchFilter narrows a hymn search. Zero-valued fields are not applied.
type SearchFilter struct {
	Title      string
	Number     *int
	HymnBookID *uint
	Skip       int
	Limit      int
	// OrderByNumber sorts by ascending hymn number; otherwise by ID.
	OrderByNumber bool
}

// SearchResult is a flattened hymn row joined with its book title.
type SearchResult struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Number        int     `json:"number"`
	HymnBookID    uint    `json:"hymn_book_id"`
	HymnBookTitle string  `json:"hymn_book_title"`
	VariantKey    *string `json:"variant_key"`
}

func (r *Repository) searchBase(ctx context.Context, f SearchFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("hymns").
		Select("hymns.id, hymns.title, hymns.number, hymns.hymn_book_id, hymn_books.title AS hymn_book_title, hymns.variant_key").
		Joins("JOIN hymn_books ON hymn_books.id = hymns.hymn_book_id")

	if f.HymnBookID != nil {
		q = q.Where("hymns.hymn_book_id = ?", *f.HymnBookID)
	}
	if f.OrderByNumber {
		q = q.Order("hymns.number ASC")
	} else {
		q = q.Order("hymns.id ASC")
	}
	return q.Offset(f.Skip).Limit(f.Limit)
}

// likeEscaper makes % and _ in user input match literally. Every LIKE in
// this file pairs with ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// SearchFields matches the structured columns. Title matches the hymn title
// or the hymn number rendered as text, case-insensitively.
func (r *Repository) SearchFields(ctx context.Context, f SearchFilter) ([]SearchResult, error) {
	q := r.searchBase(ctx, f)
	if f.Title != "" {
		pattern := likePattern(f.Title)
		q = q.Where("(LOWER(hymns.title) LIKE ? ESCAPE '!' OR CAST(hymns.number AS TEXT) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if f.Number != nil {
		q = q.Where("hymns.number = ?", *f.Number)
	}

	results := []SearchResult{}
	err := q.Scan(&results).Error
	return results, err
}

// SearchContent matches f.Title against verse and chorus text. Only the book
// filter is applied alongside it.
func (r *Repository) SearchContent(ctx context.Context, f SearchFilter) ([]SearchResult, error) {
	pattern := likePattern(f.Title)
	q := r.searchBase(ctx, f).Where(
		"(EXISTS (SELECT 1 FROM verses WHERE verses.hymn_id = hymns.id AND LOWER(verses.text) LIKE ? ESCAPE '!')"+
			" OR EXISTS (SELECT 1 FROM choruses WHERE choruses.hymn_id = hymns.id AND LOWER(choruses.text) LIKE ? ESCAPE '!'))",
		pattern, pattern,
	)

	results := []SearchResult{}
	err := q.Scan(&results).Error
	return results, err
}

// Variants returns other hymns sharing the variant key. Without a key it
// falls back to hymns whose title contains this hymn's title.
func (r *Repository) Variants(ctx context.Context, id uint, title string, variantKey *string) ([]SearchResult, error) {
	q := r.db.WithContext(ctx).
		Table("hymns").
		Select("hymns.id, hymns.title, hymns.number, hymns.hymn_book_id, hymn_books.title AS hymn_book_title, hymns.variant_key").
		Joins("JOIN hymn_books ON hymn_books.id = hymns.hymn_book_id").
		Where("hymns.id <> ?", id)

	if variantKey != nil && *variantKey != "" {
		q = q.Where("hymns.variant_key = ?", *variantKey)
	} else {
		q = q.Where("LOWER(hymns.title) LIKE ? ESCAPE '!'", likePattern(title))
	}

	results := []SearchResult{}
	err := q.Order("hymn_books.title ASC, hymns.number ASC").Scan(&results).Error
	return results, err
}
