package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/insane/app"
	apperrors "github.com/kbukum/insane/errors"
	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/observability"
	"github.com/kbukum/insane/version"
)

// Built-in routes mounted on every HTTP server.
const (
	PathPing   = "/_ping"
	PathHealth = "/_health"
)

type pingResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse is the body of /_health.
type HealthResponse struct {
	OK bool `json:"ok"`
	*observability.ServiceHealth
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, pingResponse{OK: true})
}

// health probes every connection in the application context. Any failure
// answers 503.
func health(appCtx *app.Context, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(appCtx.Config().ApplicationName, version.GetShortVersion())
		for _, h := range appCtx.Health(c.Request.Context()) {
			sh.AddComponent(h)
		}
		status := http.StatusOK
		if !sh.Up() {
			status = http.StatusServiceUnavailable
			log.Warn("health check failed", logger.Fields("failing", sh.Failing()))
		}
		c.JSON(status, HealthResponse{OK: sh.Up(), ServiceHealth: sh})
	}
}

func notFound(c *gin.Context) {
	RespondWithError(c, apperrors.NotFound("route", c.Request.URL.Path))
}
