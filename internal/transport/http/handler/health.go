package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const serviceName = "CDC: Path2Prevention API"

// Checker pings one dependency.
type Checker func(ctx context.Context) error

type HealthHandler struct {
	appName   string
	env       string
	startedAt time.Time
	checkers  map[string]Checker
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(appName, env string, startedAt time.Time, checkers map[string]Checker) *HealthHandler {
	return &HealthHandler{appName: appName, env: env, startedAt: startedAt, checkers: checkers}
}

func (h *HealthHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Hello from CDC: Path2Prevention API!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Health is the liveness probe; it never touches dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Check pings every configured dependency in parallel and answers 503 when
// any of them is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	statuses := make(map[string]dependencyStatus, len(h.checkers))
	var g errgroup.Group
	for name, check := range h.checkers {
		name, check := name, check
		g.Go(func() error {
			status := dependencyStatus{OK: true}
			if err := check(ctx); err != nil {
				status = dependencyStatus{OK: false, Message: err.Error()}
			}
			mu.Lock()
			statuses[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	statusCode := http.StatusOK
	for _, s := range statuses {
		if !s.OK {
			statusCode = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(statusCode, gin.H{
		"app":          h.appName,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": statuses,
	})
}
