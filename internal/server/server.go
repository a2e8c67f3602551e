package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"valorant-hub/internal/config"
	"valorant-hub/internal/match"
	"valorant-hub/internal/middleware"
	"valorant-hub/internal/queue"
	"valorant-hub/internal/repository"
	"valorant-hub/internal/service"
)

type Server struct {
	lifecycle *match.Lifecycle
	settler   *match.Settler
	queue     *queue.Manager
	players   *service.PlayerService
	quests    *service.QuestService
	logger    zerolog.Logger
}

func New(
	lifecycle *match.Lifecycle,
	settler *match.Settler,
	queueManager *queue.Manager,
	players *service.PlayerService,
	quests *service.QuestService,
	logger zerolog.Logger,
) *Server {
	return &Server{
		lifecycle: lifecycle,
		settler:   settler,
		queue:     queueManager,
		players:   players,
		quests:    quests,
		logger:    logger,
	}
}

// Register mounts all routes on the engine. Everything under /api
// requires a valid bearer token.
func (s *Server) Register(engine *gin.Engine, cfg *config.Config) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.Use(middleware.Authenticate(cfg.JWTSecret))

	api.GET("/queue", s.handleQueueState)
	api.POST("/queue/join", s.handleQueueJoin)
	api.POST("/queue/leave", s.handleQueueLeave)
	api.POST("/queue/fill", middleware.RequireAdmin(), s.handleQueueFill)

	api.GET("/match", s.handleMatchState)
	api.POST("/match/accept", s.handleMatchAccept)
	api.POST("/match/draft", s.handleMatchDraft)
	api.POST("/match/veto", s.handleMatchVeto)
	api.POST("/match/chat", s.handleMatchChat)
	api.POST("/match/report", s.handleMatchReport)
	api.POST("/match/reset", s.handleMatchReset)
	api.POST("/match/force-time", middleware.RequireAdmin(), s.handleMatchForceTime)
	api.POST("/match/force-settle", s.handleMatchForceSettle)

	api.GET("/players", s.handlePlayerList)
	api.GET("/players/:id", s.handlePlayerGet)
	api.PATCH("/profile", s.handleProfileUpdate)
	api.GET("/history", s.handleHistory)
	api.POST("/players/:id/commend", s.handleCommend)
	api.POST("/players/:id/report", s.handleConductReport)
	api.GET("/reports", middleware.RequireAdmin(), s.handleReportList)
	api.POST("/season/reset", middleware.RequireAdmin(), s.handleSeasonReset)

	api.POST("/friends/requests", s.handleFriendRequest)
	api.POST("/friends/requests/:fromId/accept", s.handleFriendAccept)
	api.POST("/friends/requests/:fromId/reject", s.handleFriendReject)
	api.DELETE("/friends/:id", s.handleFriendRemove)

	api.GET("/quests", s.handleQuestList)
	api.POST("/quests/:id/claim", s.handleQuestClaim)
	api.POST("/quests/reset", middleware.RequireAdmin(), s.handleQuestReset)
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, match.ErrNoActiveMatch),
		errors.Is(err, match.ErrUnknownMatch):
		status = http.StatusNotFound
	case errors.Is(err, match.ErrReportsDisagree),
		errors.Is(err, match.ErrNotReported):
		status = http.StatusConflict
	case errors.Is(err, match.ErrNotParticipant),
		errors.Is(err, match.ErrNotYourTurn):
		status = http.StatusForbidden
	case errors.Is(err, match.ErrMatchInProgress),
		errors.Is(err, match.ErrWrongPhase),
		errors.Is(err, match.ErrPlayerNotInPool),
		errors.Is(err, match.ErrMapNotInPool),
		errors.Is(err, match.ErrAlreadyConfirmed),
		errors.Is(err, match.ErrInvalidScore),
		errors.Is(err, match.ErrDrawScore),
		errors.Is(err, queue.ErrNoGameIdentity),
		errors.Is(err, service.ErrCannotFriendSelf),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrRequestPending),
		errors.Is(err, service.ErrNoSuchRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
