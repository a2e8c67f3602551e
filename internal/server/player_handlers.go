package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valorant-hub/internal/domain"
	"valorant-hub/internal/middleware"
	"valorant-hub/internal/service"
)

func (s *Server) handlePlayerList(c *gin.Context) {
	players, err := s.players.ListPlayers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (s *Server) handlePlayerGet(c *gin.Context) {
	player, err := s.players.GetPlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (s *Server) handleProfileUpdate(c *gin.Context) {
	var req struct {
		Username      *string      `json:"username"`
		AvatarURL     *string      `json:"avatarUrl"`
		RiotID        *string      `json:"riotId"`
		RiotTag       *string      `json:"riotTag"`
		PrimaryRole   *domain.Role `json:"primaryRole"`
		SecondaryRole *domain.Role `json:"secondaryRole"`
		TopAgents     []string     `json:"topAgents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.ActorFrom(c)
	player, err := s.players.UpdateProfile(c.Request.Context(), actor.ID, actor.Username, service.ProfileUpdate{
		Username:      req.Username,
		AvatarURL:     req.AvatarURL,
		RiotID:        req.RiotID,
		RiotTag:       req.RiotTag,
		PrimaryRole:   req.PrimaryRole,
		SecondaryRole: req.SecondaryRole,
		TopAgents:     req.TopAgents,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (s *Server) handleHistory(c *gin.Context) {
	records, err := s.players.ListHistory(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCommend(c *gin.Context) {
	if err := s.players.Commend(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commended": true})
}

func (s *Server) handleConductReport(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.ActorFrom(c)
	if err := s.players.SubmitReport(c.Request.Context(), actor.Username, c.Param("id"), req.Reason); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reported": true})
}

func (s *Server) handleReportList(c *gin.Context) {
	reports, err := s.players.ListReports(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleSeasonReset(c *gin.Context) {
	if err := s.players.ResetSeason(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (s *Server) handleFriendRequest(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.players.SendFriendRequest(c.Request.Context(), middleware.ActorFrom(c).ID, req.PlayerID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (s *Server) handleFriendAccept(c *gin.Context) {
	if err := s.players.AcceptFriendRequest(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("fromId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

func (s *Server) handleFriendReject(c *gin.Context) {
	if err := s.players.RejectFriendRequest(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("fromId")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

func (s *Server) handleFriendRemove(c *gin.Context) {
	if err := s.players.RemoveFriend(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (s *Server) handleQuestList(c *gin.Context) {
	view, err := s.quests.ListFor(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleQuestClaim(c *gin.Context) {
	res, err := s.quests.Claim(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": res.Claimed, "xp": res.NewXP, "level": res.NewLevel, "xpGained": res.XPGained})
}

func (s *Server) handleQuestReset(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	_ = c.ShouldBindJSON(&req)
	playerID := req.PlayerID
	if playerID == "" {
		playerID = middleware.ActorFrom(c).ID
	}

	quests, err := s.quests.ForceReset(c.Request.Context(), playerID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quests)
}
