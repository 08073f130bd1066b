package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/database"
)

// healthCheckTimeout bounds every dependency probe.
const healthCheckTimeout = 2 * time.Second

// errNotConfigured marks a dependency the process runs without.
var errNotConfigured = errors.New("not configured")

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheck probes one dependency. A nil error is reported as "ok".
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// DatabaseCheck pings the connection pool.
func DatabaseCheck(db *database.Database) HealthCheck {
	return HealthCheck{Name: "database", Probe: func(ctx context.Context) error {
		if db == nil {
			return errNotConfigured
		}
		return db.Ping(ctx)
	}}
}

// MediaCheck verifies the upload directory is present.
func MediaCheck(dir string) HealthCheck {
	return HealthCheck{Name: "media", Probe: func(context.Context) error {
		if dir == "" {
			return errNotConfigured
		}
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}}
}

type HealthController struct {
	version string
	checks  []HealthCheck
}

func NewHealthController(version string, checks ...HealthCheck) *HealthController {
	return &HealthController{version: version, checks: checks}
}

// Status runs every probe. Any failure other than a missing dependency
// turns the response into a 503.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthy := true
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		switch err := check.Probe(ctx); {
		case err == nil:
			results[check.Name] = "ok"
		case errors.Is(err, errNotConfigured):
			results[check.Name] = err.Error()
		default:
			results[check.Name] = "error: " + err.Error()
			healthy = false
		}
	}

	response := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  results,
	}
	if !healthy {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
