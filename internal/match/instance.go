package match

import (
	"time"

	"valorant-hub/internal/domain"
)

// Instance is the transient aggregate for one in-progress match. It is
// created when a queue fills, mutated only by the Lifecycle that owns
// it, and discarded after FINISHED is reset.
type Instance struct {
	ID       string               `json:"id"`
	Phase    domain.Phase         `json:"phase"`
	Players  []domain.Player      `json:"players"`
	CaptainA *domain.Player       `json:"captainA"`
	CaptainB *domain.Player       `json:"captainB"`
	TeamA    []domain.Player      `json:"teamA"`
	TeamB    []domain.Player      `json:"teamB"`
	Turn     domain.Side          `json:"turn"`
	Pool     []domain.Player      `json:"remainingPool"`
	Maps     []string             `json:"remainingMaps"`
	Selected string               `json:"selectedMap,omitempty"`
	StartAt  time.Time            `json:"startTime"`
	Winner   domain.Side          `json:"winner,omitempty"`
	ReportA  *domain.Score        `json:"reportA"`
	ReportB  *domain.Score        `json:"reportB"`
	Ready    []string             `json:"readyPlayers"`
	Deadline time.Time            `json:"readyExpiresAt"`
	Chat     []domain.ChatMessage `json:"chat"`
}

func (m *Instance) isReady(playerID string) bool {
	for _, id := range m.Ready {
		if id == playerID {
			return true
		}
	}
	return false
}

func (m *Instance) allReady() bool {
	return len(m.Ready) == len(m.Players)
}

func (m *Instance) participant(playerID string) *domain.Player {
	for i := range m.Players {
		if m.Players[i].ID == playerID {
			return &m.Players[i]
		}
	}
	return nil
}

func (m *Instance) onTeam(team []domain.Player, playerID string) bool {
	for _, p := range team {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// captainOnTurn is the captain whose side currently holds the pick or
// ban.
func (m *Instance) captainOnTurn() *domain.Player {
	if m.Turn == domain.SideA {
		return m.CaptainA
	}
	return m.CaptainB
}

// clone returns a copy safe to hand to the UI layer while the owning
// Lifecycle keeps mutating the original.
func (m *Instance) clone() *Instance {
	if m == nil {
		return nil
	}
	out := *m
	out.Players = append([]domain.Player(nil), m.Players...)
	out.TeamA = append([]domain.Player(nil), m.TeamA...)
	out.TeamB = append([]domain.Player(nil), m.TeamB...)
	out.Pool = append([]domain.Player(nil), m.Pool...)
	out.Maps = append([]string(nil), m.Maps...)
	out.Ready = append([]string(nil), m.Ready...)
	out.Chat = append([]domain.ChatMessage(nil), m.Chat...)
	if m.CaptainA != nil {
		a := *m.CaptainA
		out.CaptainA = &a
	}
	if m.CaptainB != nil {
		b := *m.CaptainB
		out.CaptainB = &b
	}
	if m.ReportA != nil {
		ra := *m.ReportA
		out.ReportA = &ra
	}
	if m.ReportB != nil {
		rb := *m.ReportB
		out.ReportB = &rb
	}
	return &out
}
