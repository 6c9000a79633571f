package middleware

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/version"
)

// HealthStatus represents the health status.
type HealthStatus string

const (
	// HealthStatusUp indicates the service is healthy.
	HealthStatusUp HealthStatus = "UP"
	// HealthStatusDown indicates the service is unhealthy.
	HealthStatusDown HealthStatus = "DOWN"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
	Version string                 `json:"version,omitempty"`
}

// CheckResult represents an individual health check result.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker performs a single dependency check.
type HealthChecker func(ctx context.Context) error

// HealthManager manages health checks.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	ready    bool
	timeout  time.Duration
}

// NewHealthManager creates a new health manager.
func NewHealthManager() *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		timeout:  3 * time.Second,
	}
}

// RegisterChecker registers a health checker.
func (h *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// SetReady sets the readiness status.
func (h *HealthManager) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns the readiness status.
func (h *HealthManager) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Check performs all health checks.
func (h *HealthManager) Check(ctx context.Context) HealthResponse {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	timeout := h.timeout
	h.mu.RUnlock()
	sort.Strings(names)

	resp := HealthResponse{
		Status:  HealthStatusUp,
		Version: version.Get().GitVersion,
	}
	if len(names) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp.Checks = make(map[string]CheckResult, len(names))
	for _, name := range names {
		if err := checkers[name](ctx); err != nil {
			resp.Status = HealthStatusDown
			resp.Checks[name] = CheckResult{Status: HealthStatusDown, Message: err.Error()}
			continue
		}
		resp.Checks[name] = CheckResult{Status: HealthStatusUp}
	}
	return resp
}

// RegisterHealthRoutes registers /healthz, /livez and /readyz on r.
func RegisterHealthRoutes(r gin.IRoutes, h *HealthManager) {
	r.GET("/healthz", func(c *gin.Context) {
		resp := h.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	})

	// Liveness probe - always returns OK if the process is running
	r.GET("/livez", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusUp})
	})

	// Readiness probe - returns OK only if service is ready
	r.GET("/readyz", func(c *gin.Context) {
		if !h.IsReady() {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: HealthStatusDown})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: HealthStatusUp})
	})
}
