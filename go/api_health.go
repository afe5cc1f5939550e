package canteenserver

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthAPI reports process and dependency liveness.
type HealthAPI struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthAPI(checks map[string]HealthCheck) HealthAPI {
	return HealthAPI{checks: checks, timeout: 2 * time.Second}
}

// Get /health
// Responds 503 when any registered dependency check fails.
func (api *HealthAPI) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), api.effectiveTimeout())
	defer cancel()

	names := make([]string, 0, len(api.checks))
	for name := range api.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := api.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": deps})
}

func (api *HealthAPI) effectiveTimeout() time.Duration {
	if api.timeout <= 0 {
		return 2 * time.Second
	}
	return api.timeout
}
