package hymnal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/database"
	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/database/dbtest"
	"github.com/mrlokans/hymnal/internal/entities"
	"github.com/mrlokans/hymnal/internal/optional"
	"github.com/mrlokans/hymnal/internal/storage"
)

var staff = &entities.User{ID: 1, Username: "staff", IsActive: true, IsStaff: true}

func setupService(t *testing.T) (*Service, *database.Database, *storage.LocalStore) {
	t.Helper()
	db := dbtest.New(t)
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewService(db, audit.NewService(auditRepo.NewRepository(db.DB)), blobs), db, blobs
}

func mustBook(t *testing.T, svc *Service, title string) *entities.HymnBook {
	t.Helper()
	book, err := svc.CreateHymnBook(context.Background(), staff, title)
	require.NoError(t, err)
	return book
}

func mustHymn(t *testing.T, svc *Service, bookID uint, number int, title string, verses ...string) *entities.Hymn {
	t.Helper()
	in := CreateHymnInput{Number: number, Title: title, HymnBookID: bookID}
	for i, v := range verses {
		in.Verses = append(in.Verses, VerseInput{Order: i + 1, Text: v})
	}
	if len(in.Verses) == 0 {
		in.Verses = []VerseInput{{Order: 1, Text: title + " verse"}}
	}
	hymn, err := svc.CreateHymn(context.Background(), staff, in)
	require.NoError(t, err)
	return hymn
}

func countRows(t *testing.T, db *database.Database, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestHymnBooks(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	t.Run("create and list ordered by title", func(t *testing.T) {
		mustBook(t, svc, "Zion Songs")
		mustBook(t, svc, "Amazing Hymns")

		books, err := svc.ListHymnBooks(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "Amazing Hymns", books[0].Title)
		assert.Equal(t, "Zion Songs", books[1].Title)
	})

	t.Run("duplicate title conflicts", func(t *testing.T) {
		_, err := svc.CreateHymnBook(ctx, staff, "Zion Songs")
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("blank title is invalid", func(t *testing.T) {
		_, err := svc.CreateHymnBook(ctx, staff, "   ")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("partial update", func(t *testing.T) {
		book := mustBook(t, svc, "Old Title")
		updated, err := svc.UpdateHymnBook(ctx, staff, book.ID, UpdateHymnBookInput{Title: optional.Of("New Title")})
		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)

		same, err := svc.UpdateHymnBook(ctx, staff, book.ID, UpdateHymnBookInput{})
		require.NoError(t, err)
		assert.Equal(t, "New Title", same.Title)
	})

	t.Run("create is audited", func(t *testing.T) {
		assert.NotZero(t, countRows(t, db, &entities.AuditLog{}, "action = ?", entities.AuditCreateHymnBook))
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := svc.GetHymnBook(ctx, 9999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestCreateHymn(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Book A")

	t.Run("stores exactly the supplied verses in order", func(t *testing.T) {
		hymn, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
			Number:     1,
			Title:      "Amazing Grace",
			HymnBookID: book.ID,
			Verses: []VerseInput{
				{Order: 2, Text: "Twas grace that taught"},
				{Order: 1, Text: "Amazing grace how sweet the sound"},
			},
			Chorus: strPtr("My chains are gone"),
		})
		require.NoError(t, err)

		require.Len(t, hymn.Verses, 2)
		assert.Equal(t, 1, hymn.Verses[0].Order)
		assert.Equal(t, "Amazing grace how sweet the sound", hymn.Verses[0].Text)
		assert.Equal(t, 2, hymn.Verses[1].Order)
		require.NotNil(t, hymn.Chorus)
		assert.Equal(t, "My chains are gone", hymn.Chorus.Text)
	})

	t.Run("omitting verses fails validation", func(t *testing.T) {
		_, err := svc.CreateHymn(ctx, staff, CreateHymnInput{Number: 2, Title: "No verses", HymnBookID: book.ID})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("non-positive number fails validation", func(t *testing.T) {
		_, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
			Number: 0, Title: "Zero", HymnBookID: book.ID,
			Verses: []VerseInput{{Order: 1, Text: "x"}},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("number collision within a book conflicts", func(t *testing.T) {
		_, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
			Number: 1, Title: "Another", HymnBookID: book.ID,
			Verses: []VerseInput{{Order: 1, Text: "x"}},
		})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("same number in another book is fine", func(t *testing.T) {
		other := mustBook(t, svc, "Book B")
		mustHymn(t, svc, other.ID, 1, "Amazing Grace (B)")
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
			Number: 5, Title: "Lost", HymnBookID: 9999,
			Verses: []VerseInput{{Order: 1, Text: "x"}},
		})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestListHymnsByBook(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	book := mustBook(t, svc, "Book A")
	hymn := mustHymn(t, svc, book.ID, 1, "Amazing Grace", "Amazing grace how sweet the sound")

	hymns, err := svc.ListHymnsByBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, hymns, 1)
	assert.Equal(t, hymn.ID, hymns[0].ID)
	assert.Equal(t, "Amazing Grace", hymns[0].Title)
	require.Len(t, hymns[0].Verses, 1)

	_, err = svc.ListHymnsByBook(ctx, 9999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateHymn(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Book A")

	t.Run("applies only present fields", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 10, "Original", "first", "second")

		updated, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Title: optional.Of("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, 10, updated.Number)
		require.Len(t, updated.Verses, 2)
		assert.Equal(t, "first", updated.Verses[0].Text)
	})

	t.Run("same payload twice is idempotent", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 11, "Idem", "one")
		in := UpdateHymnInput{
			Title:  optional.Of("Idempotent"),
			Verses: optional.Of([]VerseInput{{Order: 1, Text: "uno"}, {Order: 2, Text: "dos"}}),
			Chorus: optional.Of("Chorus text"),
		}

		first, err := svc.UpdateHymn(ctx, staff, hymn.ID, in)
		require.NoError(t, err)
		second, err := svc.UpdateHymn(ctx, staff, hymn.ID, in)
		require.NoError(t, err)

		assert.Equal(t, first.Title, second.Title)
		assert.Equal(t, first.Verses, second.Verses)
		assert.Equal(t, first.Chorus, second.Chorus)
		require.Len(t, second.Verses, 2)
		assert.Equal(t, "dos", second.Verses[1].Text)
	})

	t.Run("verses replace the whole set", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 12, "Replace", "a", "b", "c")
		updated, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{
			Verses: optional.Of([]VerseInput{{Order: 2, Text: "B"}}),
		})
		require.NoError(t, err)
		require.Len(t, updated.Verses, 1)
		assert.Equal(t, 2, updated.Verses[0].Order)
		assert.Equal(t, "B", updated.Verses[0].Text)
	})

	t.Run("null chorus removes it", func(t *testing.T) {
		hymn, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
			Number: 13, Title: "With chorus", HymnBookID: book.ID,
			Verses: []VerseInput{{Order: 1, Text: "v"}},
			Chorus: strPtr("Glory glory"),
		})
		require.NoError(t, err)

		updated, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Chorus: optional.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, updated.Chorus)
	})

	t.Run("empty verses rejected on merge", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 14, "Keep verses")
		_, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Verses: optional.Of([]VerseInput{})})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		stored, err := svc.GetHymn(ctx, hymn.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Verses, 1)
	})

	t.Run("short chorus rejected and nothing written", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 15, "Atomic")
		_, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{
			Title:  optional.Of("Should not stick"),
			Chorus: optional.Of("abc"),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		stored, err := svc.GetHymn(ctx, hymn.ID)
		require.NoError(t, err)
		assert.Equal(t, "Atomic", stored.Title)
	})

	t.Run("null title rejected", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 16, "Null title")
		_, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Title: optional.Null[string]()})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("number collision conflicts", func(t *testing.T) {
		hymn := mustHymn(t, svc, book.ID, 17, "Collides")
		_, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Number: optional.Of(10)})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("missing hymn", func(t *testing.T) {
		_, err := svc.UpdateHymn(ctx, staff, 9999, UpdateHymnInput{Title: optional.Of("x")})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestDeleteHymnCascades(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Book A")

	a := mustHymn(t, svc, book.ID, 1, "A", "a1", "a2")
	b := mustHymn(t, svc, book.ID, 2, "B")
	c := mustHymn(t, svc, book.ID, 3, "C")
	_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: a.ID, TargetHymnID: b.ID})
	require.NoError(t, err)
	_, err = svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: c.ID, TargetHymnID: a.ID})
	require.NoError(t, err)
	_, err = svc.UpdateHymn(ctx, staff, a.ID, UpdateHymnInput{Chorus: optional.Of("Chorus for A")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHymn(ctx, staff, a.ID))

	_, err = svc.GetHymn(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, countRows(t, db, &entities.Verse{}, "hymn_id = ?", a.ID))
	assert.Zero(t, countRows(t, db, &entities.Chorus{}, "hymn_id = ?", a.ID))
	assert.Zero(t, countRows(t, db, &entities.HymnMapping{}, "source_hymn_id = ? OR target_hymn_id = ?", a.ID, a.ID))

	_, err = svc.GetHymn(ctx, b.ID)
	assert.NoError(t, err)

	err = svc.DeleteHymn(ctx, staff, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteHymnBookCascades(t *testing.T) {
	svc, db, blobs := setupService(t)
	ctx := context.Background()

	book := mustBook(t, svc, "Doomed")
	keep := mustBook(t, svc, "Kept")
	h1 := mustHymn(t, svc, book.ID, 1, "One")
	h2 := mustHymn(t, svc, book.ID, 2, "Two")
	other := mustHymn(t, svc, keep.ID, 1, "Other")
	_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: other.ID, TargetHymnID: h1.ID})
	require.NoError(t, err)

	book, err = svc.UpdateHymnBookThumbnail(ctx, staff, book.ID, []byte("png"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, book.ThumbnailPath)

	require.NoError(t, svc.DeleteHymnBook(ctx, staff, book.ID))

	assert.Zero(t, countRows(t, db, &entities.Hymn{}, "hymn_book_id = ?", book.ID))
	assert.Zero(t, countRows(t, db, &entities.Verse{}, "hymn_id IN ?", []uint{h1.ID, h2.ID}))
	assert.Zero(t, countRows(t, db, &entities.HymnMapping{}, "1 = 1"))
	exists, err := blobs.Exists(ctx, *book.ThumbnailPath)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.GetHymn(ctx, other.ID)
	assert.NoError(t, err)
}

func TestUpdateHymnBookThumbnail(t *testing.T) {
	svc, _, blobs := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Pictured")

	t.Run("rejects non-image", func(t *testing.T) {
		_, err := svc.UpdateHymnBookThumbnail(ctx, staff, book.ID, []byte("gif"), "image/gif")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("replaces previous file", func(t *testing.T) {
		first, err := svc.UpdateHymnBookThumbnail(ctx, staff, book.ID, []byte("one"), "image/jpeg")
		require.NoError(t, err)
		firstPath := *first.ThumbnailPath
		assert.Regexp(t, `^thumbnails/book_\d+_[0-9a-f-]{36}\.jpg$`, firstPath)

		second, err := svc.UpdateHymnBookThumbnail(ctx, staff, book.ID, []byte("two"), "image/png")
		require.NoError(t, err)
		assert.NotEqual(t, firstPath, *second.ThumbnailPath)

		exists, err := blobs.Exists(ctx, firstPath)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := svc.UpdateHymnBookThumbnail(ctx, staff, 9999, []byte("x"), "image/png")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestMappings(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Book A")
	var hymns []*entities.Hymn
	for i := 1; i <= 5; i++ {
		hymns = append(hymns, mustHymn(t, svc, book.ID, i, "Hymn"))
	}
	h3, h5 := hymns[2], hymns[4]

	t.Run("stores canonical order", func(t *testing.T) {
		m, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: h5.ID, TargetHymnID: h3.ID})
		require.NoError(t, err)
		assert.Equal(t, h3.ID, m.SourceHymnID)
		assert.Equal(t, h5.ID, m.TargetHymnID)
		assert.Equal(t, entities.DefaultRelationType, m.RelationType)

		stored, err := svc.GetMapping(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, h3.ID, stored.SourceHymnID)
	})

	t.Run("reverse duplicate conflicts", func(t *testing.T) {
		_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: h3.ID, TargetHymnID: h5.ID})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("self mapping rejected", func(t *testing.T) {
		_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: h3.ID, TargetHymnID: h3.ID})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("unknown hymn", func(t *testing.T) {
		_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: h3.ID, TargetHymnID: 9999})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("for hymn matches either side", func(t *testing.T) {
		_, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: hymns[0].ID, TargetHymnID: h5.ID, RelationType: "translation"})
		require.NoError(t, err)

		ms, err := svc.MappingsForHymn(ctx, h5.ID)
		require.NoError(t, err)
		assert.Len(t, ms, 2)

		ms, err = svc.MappingsForHymn(ctx, h3.ID)
		require.NoError(t, err)
		assert.Len(t, ms, 1)
	})

	t.Run("update re-canonicalizes", func(t *testing.T) {
		m, err := svc.CreateMapping(ctx, staff, CreateMappingInput{SourceHymnID: hymns[1].ID, TargetHymnID: hymns[3].ID})
		require.NoError(t, err)

		updated, err := svc.UpdateMapping(ctx, staff, m.ID, UpdateMappingInput{
			SourceHymnID: optional.Of(h5.ID),
			Note:         optional.Of("same tune"),
		})
		require.NoError(t, err)
		assert.Equal(t, hymns[3].ID, updated.SourceHymnID)
		assert.Equal(t, h5.ID, updated.TargetHymnID)
		require.NotNil(t, updated.Note)
		assert.Equal(t, "same tune", *updated.Note)

		cleared, err := svc.UpdateMapping(ctx, staff, m.ID, UpdateMappingInput{Note: optional.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, cleared.Note)
	})

	t.Run("delete", func(t *testing.T) {
		ms, err := svc.ListMappings(ctx, 0, 100)
		require.NoError(t, err)
		require.NotEmpty(t, ms)

		require.NoError(t, svc.DeleteMapping(ctx, staff, ms[0].ID))
		_, err = svc.GetMapping(ctx, ms[0].ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestSearch(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	bookA := mustBook(t, svc, "Book A")
	bookB := mustBook(t, svc, "Book B")
	mustHymn(t, svc, bookA.ID, 190, "Holy Holy Holy", "Lord God almighty")
	mustHymn(t, svc, bookA.ID, 19, "Amazing Grace", "How sweet the sound")
	mustHymn(t, svc, bookA.ID, 5, "Be Thou My Vision", "O Lord of my heart")
	mustHymn(t, svc, bookB.ID, 1, "Amazing Grace", "That saved a wretch like me")

	t.Run("title substring case-insensitive", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{Title: "amazing"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "Amazing Grace", r.Title)
			assert.NotEmpty(t, r.HymnBookTitle)
		}
	})

	t.Run("book filter orders by number", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{HymnBookID: &bookA.ID})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, 5, results[0].Number)
		assert.Equal(t, 19, results[1].Number)
		assert.Equal(t, 190, results[2].Number)
		assert.Equal(t, "Book A", results[0].HymnBookTitle)
	})

	t.Run("numeric title matches number text and orders by number", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{Title: "19"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 19, results[0].Number)
		assert.Equal(t, 190, results[1].Number)
	})

	t.Run("exact number", func(t *testing.T) {
		n := 1
		results, err := svc.Search(ctx, SearchQuery{Number: &n})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, bookB.ID, results[0].HymnBookID)
	})

	t.Run("falls back to verse text", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{Title: "WRETCH"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, bookB.ID, results[0].HymnBookID)
	})

	t.Run("fallback respects book filter", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{Title: "wretch", HymnBookID: &bookA.ID})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("fallback matches chorus", func(t *testing.T) {
		hymn := mustHymn(t, svc, bookB.ID, 2, "Chorus Hymn")
		_, err := svc.UpdateHymn(ctx, staff, hymn.ID, UpdateHymnInput{Chorus: optional.Of("Hallelujah forever")})
		require.NoError(t, err)

		results, err := svc.Search(ctx, SearchQuery{Title: "hallelujah"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, hymn.ID, results[0].ID)
	})

	t.Run("fallback is not merged with title matches", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchQuery{Title: "lord"})
		require.NoError(t, err)
		// No title contains "lord", so both lyric matches come from the fallback.
		assert.Len(t, results, 2)

		results, err = svc.Search(ctx, SearchQuery{Title: "vision"})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.Search(ctx, SearchQuery{HymnBookID: &bookA.ID, Skip: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, 19, page[0].Number)
	})

	t.Run("search by title reports not found", func(t *testing.T) {
		_, err := svc.SearchByTitle(ctx, "nothing like this", 0, 10)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("search in book", func(t *testing.T) {
		results, err := svc.SearchInBook(ctx, bookB.ID, "amazing", 0, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)

		_, err = svc.SearchInBook(ctx, 9999, "amazing", 0, 10)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestVariants(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	bookA := mustBook(t, svc, "Book A")
	bookB := mustBook(t, svc, "Book B")

	key := "amazing-grace"
	a, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
		Number: 1, Title: "Amazing Grace", HymnBookID: bookA.ID, VariantKey: &key,
		Verses: []VerseInput{{Order: 1, Text: "x"}},
	})
	require.NoError(t, err)
	b, err := svc.CreateHymn(ctx, staff, CreateHymnInput{
		Number: 7, Title: "Gracia Admirable", HymnBookID: bookB.ID, VariantKey: &key,
		Verses: []VerseInput{{Order: 1, Text: "y"}},
	})
	require.NoError(t, err)
	plain := mustHymn(t, svc, bookA.ID, 2, "Rock of Ages")
	similar := mustHymn(t, svc, bookB.ID, 3, "Rock of Ages (alt)")

	t.Run("by variant key", func(t *testing.T) {
		results, err := svc.Variants(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, b.ID, results[0].ID)
	})

	t.Run("by title when no key", func(t *testing.T) {
		results, err := svc.Variants(ctx, plain.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, similar.ID, results[0].ID)
	})
}

func TestSlides(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	book := mustBook(t, svc, "Book A")
	for _, n := range []int{3, 1, 2} {
		mustHymn(t, svc, book.ID, n, "Hymn", "first", "second")
	}

	slides, err := svc.BookSlides(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, 1, slides[0].Number)
	assert.Equal(t, []string{"first", "second"}, slides[0].Verses)
	assert.Nil(t, slides[0].Chorus)

	paged, err := svc.BookSlidesPaged(ctx, book.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, 2, paged[0].Number)

	slide, err := svc.Slide(ctx, slides[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, slide.Number)
}
