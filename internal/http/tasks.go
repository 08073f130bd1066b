package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client        *tasks.Client
	retentionDays int
}

// NewTasksController creates a new TasksController. retentionDays is used
// when a cleanup request does not name its own.
func NewTasksController(client *tasks.Client, retentionDays int) *TasksController {
	return &TasksController{client: client, retentionDays: retentionDays}
}

// CleanupAuditLogsRequest is the optional body of a cleanup run.
type CleanupAuditLogsRequest struct {
	RetentionDays int `json:"retention_days" binding:"omitempty,gte=1"`
}

type TaskResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status"`
}

// RunAuditCleanup enqueues an audit retention run.
// POST /api/v1/tasks/cleanup-audit-logs
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	var req CleanupAuditLogsRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if req.RetentionDays == 0 {
		req.RetentionDays = tc.retentionDays
	}

	task := tasks.CleanupAuditLogsTask{RetentionDays: req.RetentionDays}
	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondError(c, apperr.Internal("failed to enqueue task", err))
		return
	}

	c.JSON(http.StatusAccepted, TaskResponse{
		ID:     ids[0],
		Type:   task.Config().Name,
		Status: taskStatusToString(backlite.TaskStatusPending),
	})
}

// GetTaskStatus returns the status of a specific task.
// GET /api/v1/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondError(c, apperr.Internal("failed to load task status", err))
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondError(c, apperr.NotFound("task"))
		return
	}

	c.JSON(http.StatusOK, TaskResponse{
		ID:     taskID,
		Status: taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
