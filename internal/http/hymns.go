package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/hymnal"
)

type HymnsController struct {
	service *hymnal.Service
}

func NewHymnsController(service *hymnal.Service) *HymnsController {
	return &HymnsController{service: service}
}

// List returns hymns ordered by ID.
// GET /api/v1/hymns
func (hc *HymnsController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c, hymnal.DefaultHymnLimit)
	if !ok {
		return
	}
	list, err := hc.service.ListHymns(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns a hymn with its verses and chorus.
// GET /api/v1/hymns/:id
func (hc *HymnsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	hymn, err := hc.service.GetHymn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hymn)
}

// Create adds a hymn to an existing book.
// POST /api/v1/hymns
func (hc *HymnsController) Create(c *gin.Context) {
	var req hymnal.CreateHymnInput
	if !bindJSON(c, &req) {
		return
	}
	hymn, err := hc.service.CreateHymn(c.Request.Context(), auth.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hymn)
}

// Update applies the fields present in the body.
// PUT /api/v1/hymns/:id
func (hc *HymnsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req hymnal.UpdateHymnInput
	if !bindJSON(c, &req) {
		return
	}
	hymn, err := hc.service.UpdateHymn(c.Request.Context(), auth.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hymn)
}

// Delete removes a hymn together with its verses, chorus and mappings.
// DELETE /api/v1/hymns/:id
func (hc *HymnsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := hc.service.DeleteHymn(c.Request.Context(), auth.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "hymn deleted"})
}

// Search filters by title, number and book.
// GET /api/v1/hymns/search
func (hc *HymnsController) Search(c *gin.Context) {
	skip, limit, ok := parsePagination(c, hymnal.DefaultSearchLimit)
	if !ok {
		return
	}
	number, ok := parseIntQuery(c, "number")
	if !ok {
		return
	}
	query := hymnal.SearchQuery{
		Title:  c.Query("title"),
		Number: number,
		Skip:   skip,
		Limit:  limit,
	}
	if raw := strings.TrimSpace(c.Query("hymn_book_id")); raw != "" {
		bookID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, apperr.ValidationField("hymn_book_id", "must be a positive integer"))
			return
		}
		id := uint(bookID)
		query.HymnBookID = &id
	}

	results, err := hc.service.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// SearchByTitle is a title-only search that reports no match as 404.
// GET /api/v1/hymns/search-by-title
func (hc *HymnsController) SearchByTitle(c *gin.Context) {
	skip, limit, ok := parsePagination(c, hymnal.DefaultSearchLimit)
	if !ok {
		return
	}
	results, err := hc.service.SearchByTitle(c.Request.Context(), c.Query("title"), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Slide returns the presentation view of a hymn.
// GET /api/v1/hymns/:id/slide
func (hc *HymnsController) Slide(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	slide, err := hc.service.Slide(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slide)
}

// Variants lists other versions of a hymn.
// GET /api/v1/hymns/:id/variants
func (hc *HymnsController) Variants(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	results, err := hc.service.Variants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ListByBook returns every hymn in a book ordered by number.
// GET /api/v1/hymns/book/:id
func (hc *HymnsController) ListByBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := hc.service.ListHymnsByBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SearchInBook searches the hymns of one book.
// GET /api/v1/hymns/book/:id/search
func (hc *HymnsController) SearchInBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parsePagination(c, hymnal.DefaultSearchLimit)
	if !ok {
		return
	}
	results, err := hc.service.SearchInBook(c.Request.Context(), id, c.Query("query"), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// BookSlides returns slides for every hymn in a book.
// GET /api/v1/hymns/book/:id/slides
func (hc *HymnsController) BookSlides(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	slides, err := hc.service.BookSlides(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slides)
}

// BookSlidesPaged returns one page of a book's slides.
// GET /api/v1/hymns/book/:id/paged
func (hc *HymnsController) BookSlidesPaged(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parsePagination(c, hymnal.DefaultSlidesLimit)
	if !ok {
		return
	}
	slides, err := hc.service.BookSlidesPaged(c.Request.Context(), id, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slides)
}
