package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/hymnal"
)

type createHymnBookRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type HymnBooksController struct {
	service        *hymnal.Service
	maxUploadBytes int64
}

func NewHymnBooksController(service *hymnal.Service, maxUploadBytes int64) *HymnBooksController {
	return &HymnBooksController{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// List returns hymn books ordered by title.
// GET /api/v1/hymnbooks
func (hc *HymnBooksController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c, hymnal.DefaultHymnLimit)
	if !ok {
		return
	}
	books, err := hc.service.ListHymnBooks(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// Get returns a single hymn book.
// GET /api/v1/hymnbooks/:id
func (hc *HymnBooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := hc.service.GetHymnBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create adds a hymn book.
// POST /api/v1/hymnbooks
func (hc *HymnBooksController) Create(c *gin.Context) {
	var req createHymnBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := hc.service.CreateHymnBook(c.Request.Context(), auth.GetActor(c), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Update applies a partial update to a hymn book.
// PUT /api/v1/hymnbooks/:id
func (hc *HymnBooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req hymnal.UpdateHymnBookInput
	if !bindJSON(c, &req) {
		return
	}
	book, err := hc.service.UpdateHymnBook(c.Request.Context(), auth.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete removes a hymn book with all of its hymns.
// DELETE /api/v1/hymnbooks/:id
func (hc *HymnBooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := hc.service.DeleteHymnBook(c.Request.Context(), auth.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "hymn book deleted"})
}

// UploadThumbnail stores a JPEG or PNG thumbnail from the multipart "file"
// field.
// POST /api/v1/hymnbooks/:id/thumbnail
func (hc *HymnBooksController) UploadThumbnail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	data, contentType, ok := readUpload(c, hc.maxUploadBytes)
	if !ok {
		return
	}
	book, err := hc.service.UpdateHymnBookThumbnail(c.Request.Context(), auth.GetActor(c), id, data, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}
