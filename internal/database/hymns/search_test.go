package hymns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/database/dbtest"
	"github.com/mrlokans/hymnal/internal/entities"
)

func titles(results []SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	book := &entities.HymnBook{Title: "Songs of Praise"}
	require.NoError(t, db.DB.Create(book).Error)
	for _, h := range []*entities.Hymn{
		{Number: 1, Title: "100% Joy", HymnBookID: book.ID, Verses: []entities.Verse{{Order: 1, Text: "Sing out!"}}},
		{Number: 2, Title: "Amazing Grace", HymnBookID: book.ID, Verses: []entities.Verse{{Order: 1, Text: "How sweet the sound"}}},
		{Number: 3, Title: "snake_case", HymnBookID: book.ID, Verses: []entities.Verse{{Order: 1, Text: "Sing out"}}},
	} {
		require.NoError(t, repo.Create(ctx, h))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"%", []string{"100% Joy"}},
		{"_", []string{"snake_case"}},
		{"!", []string{}},
		{"a", []string{"Amazing Grace", "snake_case"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := repo.SearchFields(ctx, SearchFilter{Title: tt.query, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(results))
		})
	}

	t.Run("content", func(t *testing.T) {
		results, err := repo.SearchContent(ctx, SearchFilter{Title: "out!", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"100% Joy"}, titles(results))
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%grace%", likePattern("Grace"))
	assert.Equal(t, "%50!% off!_now!!%", likePattern("50% off_now!"))
}
