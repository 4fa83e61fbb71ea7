// Package http is the gin edge. Handlers stay thin: they resolve the room,
// the user's role and device hints, then delegate to the orchestrator and
// translate its results into redirects, flashes and JSON.
package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/app"
	"github.com/dkeye/roomgate/internal/config"
	"github.com/dkeye/roomgate/internal/core"
)

type Handlers struct {
	Orch  *app.Orchestrator
	Store core.RoomStore
	Cache core.StatusCache
}

func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RoomgateSessions", store))

	log.Info().Str("module", "adapters.http").Msg("router setup")

	r.POST("/rooms", h.handleCreateRoom)

	rooms := r.Group("/rooms/:id", h.roomMiddleware())
	rooms.GET("/join", h.handleJoin)
	rooms.POST("/join", h.handleJoin)
	rooms.GET("/invite", h.handleInvite)
	rooms.GET("/running", h.handleRunning)
	rooms.GET("/join_mobile", h.handleJoinMobile)
	rooms.POST("/end", h.handleEnd)
	rooms.POST("/recordings/fetch", h.handleFetchRecordings)
	r.DELETE("/rooms/:id", h.roomMiddleware(), h.handleDestroy)

	return r
}
