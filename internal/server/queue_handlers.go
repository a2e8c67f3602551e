package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valorant-hub/internal/middleware"
)

func (s *Server) handleQueueState(c *gin.Context) {
	c.JSON(http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueJoin(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	player, err := s.players.GetPlayer(c.Request.Context(), actor.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.queue.Join(*player); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueLeave(c *gin.Context) {
	s.queue.Leave(middleware.ActorFrom(c).ID)
	c.JSON(http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueFill(c *gin.Context) {
	if err := s.queue.FillWithBots(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.queue.Snapshot())
}
