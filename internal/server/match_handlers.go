package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valorant-hub/internal/middleware"
)

func (s *Server) handleMatchState(c *gin.Context) {
	snapshot := s.lifecycle.Snapshot()
	if snapshot == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "match": snapshot})
}

func (s *Server) handleMatchAccept(c *gin.Context) {
	if err := s.lifecycle.Accept(middleware.ActorFrom(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lifecycle.Snapshot())
}

func (s *Server) handleMatchDraft(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lifecycle.DraftPlayer(middleware.ActorFrom(c), req.PlayerID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lifecycle.Snapshot())
}

func (s *Server) handleMatchVeto(c *gin.Context) {
	var req struct {
		Map string `json:"map" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lifecycle.VetoMap(middleware.ActorFrom(c), req.Map); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lifecycle.Snapshot())
}

func (s *Server) handleMatchChat(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.lifecycle.SendChat(middleware.ActorFrom(c), req.Text); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lifecycle.Snapshot())
}

func (s *Server) handleMatchReport(c *gin.Context) {
	var req struct {
		ScoreA *int `json:"scoreA" binding:"required"`
		ScoreB *int `json:"scoreB" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	finished, err := s.lifecycle.ReportResult(c.Request.Context(), middleware.ActorFrom(c), *req.ScoreA, *req.ScoreB)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finished": finished, "match": s.lifecycle.Snapshot()})
}

func (s *Server) handleMatchReset(c *gin.Context) {
	if err := s.lifecycle.Reset(middleware.ActorFrom(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": false})
}

func (s *Server) handleMatchForceTime(c *gin.Context) {
	if err := s.lifecycle.ForceTimePass(); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lifecycle.Snapshot())
}

func (s *Server) handleMatchForceSettle(c *gin.Context) {
	var req struct {
		MatchID string `json:"matchId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settler.ForceApply(c.Request.Context(), req.MatchID, middleware.ActorFrom(c).ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": true})
}
