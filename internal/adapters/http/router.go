package http

import (
	"context"
	"net/http"

	"github.com/dkeye/gamegate/internal/adapters/signal"
	"github.com/dkeye/gamegate/internal/app"
	"github.com/dkeye/gamegate/internal/config"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "ct"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a per-browser token in the cookie session.
// Requires the sessions middleware to run first.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("GameSessions", store))
	r.Use(ClientTokenMiddleware())

	limiter := signal.NewRateLimiter(cfg.Rate.Limit, cfg.Rate.Interval)
	ctrl := signal.NewSignalWSController(orch, cfg.WS, limiter)

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/game", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws game endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	// Same listing as the info command, for clients that want it before connecting.
	api.GET("/games", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Dispatcher.Info())
	})

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      domain.StatusOK,
			"connections": orch.Registry.Len(),
			"bindings":    orch.Bindings.Len(),
		})
	})

	return r
}
