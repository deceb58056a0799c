package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/redis"
	"github.com/kbukum/insane/server"
)

type pingStats struct {
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

type httpApp struct {
	server.BaseHooks
	stats *redis.TypedStore[pingStats]
}

func (h *httpApp) Routes(sc *server.Context) *server.Routes {
	return server.NewRoutes("/api").
		GET("/ping_user", h.pingUser)
}

func (h *httpApp) BeforeServe(_ context.Context, c *app.Context, _ app.ServerScope) error {
	if client := c.Redis(); client != nil {
		h.stats = redis.NewTypedStore[pingStats](client, "insane_example:ping")
	}
	return nil
}

func (h *httpApp) ServerInitializers(context.Context, *app.Context, app.ServerScope) ([]app.Initializer, error) {
	return nil, nil
}

// pingUser answers with an empty body, or with the ping counter when redis
// is configured.
func (h *httpApp) pingUser(c *gin.Context) {
	if h.stats == nil {
		server.RespondNoContent(c)
		return
	}
	ctx := c.Request.Context()
	st, err := h.stats.Load(ctx, "user")
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if st == nil {
		st = &pingStats{}
	}
	st.Count++
	st.LastSeen = time.Now().UTC()
	if err := h.stats.Save(ctx, "user", st, 24*time.Hour); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, st)
}
