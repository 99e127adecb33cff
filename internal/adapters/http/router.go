package http

import (
	"context"

	"github.com/dkeye/Callboard/internal/adapters/rtc"
	"github.com/dkeye/Callboard/internal/adapters/signal"
	"github.com/dkeye/Callboard/internal/app/orch"
	"github.com/dkeye/Callboard/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "ct"

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable token kept in the
// signed session cookie. Room creation is rate limited per token.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ice *rtc.ICEProvider) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 7,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("CallboardSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", handleHealth(o))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, cfg.WS, cfg.Rooms)
	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})
	api.GET("/users", handleUsers(o))
	api.GET("/rooms", handleRooms(o))
	api.GET("/ice-servers", handleICEServers(ice))

	return r
}
