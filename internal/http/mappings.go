package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/hymnal"
)

type MappingsController struct {
	service *hymnal.Service
}

func NewMappingsController(service *hymnal.Service) *MappingsController {
	return &MappingsController{service: service}
}

// GET /api/v1/mappings
func (mc *MappingsController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c, hymnal.DefaultHymnLimit)
	if !ok {
		return
	}
	list, err := mc.service.ListMappings(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/v1/mappings/:id
func (mc *MappingsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mapping, err := mc.service.GetMapping(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapping)
}

// ForHymn lists the mappings on either side of a hymn.
// GET /api/v1/mappings/source/:id
func (mc *MappingsController) ForHymn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := mc.service.MappingsForHymn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/v1/mappings
func (mc *MappingsController) Create(c *gin.Context) {
	var req hymnal.CreateMappingInput
	if !bindJSON(c, &req) {
		return
	}
	mapping, err := mc.service.CreateMapping(c.Request.Context(), auth.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

// PUT /api/v1/mappings/:id
func (mc *MappingsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req hymnal.UpdateMappingInput
	if !bindJSON(c, &req) {
		return
	}
	mapping, err := mc.service.UpdateMapping(c.Request.Context(), auth.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapping)
}

// DELETE /api/v1/mappings/:id
func (mc *MappingsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := mc.service.DeleteMapping(c.Request.Context(), auth.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "mapping deleted"})
}
