package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/entities"
)

const defaultAuditLimit = 100

type AuditLogPage struct {
	Logs  []entities.AuditLog `json:"logs"`
	Total int64               `json:"total"`
	Skip  int                 `json:"skip"`
	Limit int                 `json:"limit"`
}

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// List returns audit logs newest first, optionally filtered by action and
// acting user.
// GET /api/v1/audit-logs
func (ac *AuditController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c, defaultAuditLimit)
	if !ok {
		return
	}
	if limit == 0 {
		limit = defaultAuditLimit
	}

	filter := auditRepo.Filter{
		Action: entities.AuditAction(strings.ToUpper(strings.TrimSpace(c.Query("action")))),
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, apperr.ValidationField("user_id", "must be a positive integer"))
			return
		}
		filter.UserID = uint(id)
	}

	logs, total, err := ac.auditService.List(c.Request.Context(), filter, skip, limit)
	if err != nil {
		respondError(c, apperr.Internal("failed to load audit logs", err))
		return
	}
	if logs == nil {
		logs = []entities.AuditLog{}
	}

	c.JSON(http.StatusOK, AuditLogPage{
		Logs:  logs,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}
