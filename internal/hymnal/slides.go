package hymnal

import (
	"context"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/entities"
)

// Slide is the presentation shape of a hymn: verse texts in order and the
// chorus, if any.
type Slide struct {
	ID     uint     `json:"id"`
	Title  string   `json:"title"`
	Number int      `json:"number"`
	Verses []string `json:"verses"`
	Chorus *string  `json:"chorus"`
}

func slideOf(h *entities.Hymn) Slide {
	slide := Slide{
		ID:     h.ID,
		Title:  h.Title,
		Number: h.Number,
		Verses: make([]string, 0, len(h.Verses)),
	}
	for _, v := range h.Verses {
		slide.Verses = append(slide.Verses, v.Text)
	}
	if h.Chorus != nil {
		text := h.Chorus.Text
		slide.Chorus = &text
	}
	return slide
}

func (s *Service) Slide(ctx context.Context, id uint) (*Slide, error) {
	hymn, err := s.GetHymn(ctx, id)
	if err != nil {
		return nil, err
	}
	slide := slideOf(hymn)
	return &slide, nil
}

// BookSlides returns slides for every hymn of a book ordered by number.
func (s *Service) BookSlides(ctx context.Context, bookID uint) ([]Slide, error) {
	return s.bookSlides(ctx, bookID, 0, -1)
}

// BookSlidesPaged returns a page of a book's slides ordered by number.
func (s *Service) BookSlidesPaged(ctx context.Context, bookID uint, skip, limit int) ([]Slide, error) {
	if limit <= 0 {
		limit = DefaultSlidesLimit
	}
	return s.bookSlides(ctx, bookID, skip, limit)
}

func (s *Service) bookSlides(ctx context.Context, bookID uint, skip, limit int) ([]Slide, error) {
	if _, err := s.GetHymnBook(ctx, bookID); err != nil {
		return nil, err
	}
	hymns, err := s.hymns.ListByBook(ctx, bookID, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "hymn")
	}
	slides := make([]Slide, 0, len(hymns))
	for i := range hymns {
		slides = append(slides, slideOf(&hymns[i]))
	}
	return slides, nil
}
