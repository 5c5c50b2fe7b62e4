package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping     Pinger
	draining func() bool
	timeout  time.Duration
}

// NewHealthHandler builds the liveness and readiness probes. A nil ping is
// always reachable; a nil draining never drains.
func NewHealthHandler(ping Pinger, draining func() bool) *HealthHandler {
	return &HealthHandler{ping: ping, draining: draining, timeout: 500 * time.Millisecond}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails while the server drains so load balancers stop routing to it
// before in-flight requests finish.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.draining != nil && h.draining() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting down"})
		return
	}

	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "db not ready"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
