package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dnelfhmi/real-time-whiteboard/internal/adapters"
	"github.com/dnelfhmi/real-time-whiteboard/internal/config"
	"github.com/dnelfhmi/real-time-whiteboard/internal/core"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, session *core.Session) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WhiteboardSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"state":   int(session.State()),
			"members": len(session.ListActive()),
		})
	})

	api.GET("/members", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": session.ListActive()})
	})

	api.GET("/ws/board", func(c *gin.Context) {
		ctrl := adapters.NewBoardWSController(session, cfg.ReadLimit)
		log.Info().Str("module", "adapters.http").Str("token", c.GetString("client_token")).Msg("ws board endpoint hit")
		ctrl.HandleBoard(ctx, c)
	})

	return r
}
