package domain

import (
	"time"
)

type Role string

const (
	RoleDuelist    Role = "Duelist"
	RoleInitiator  Role = "Initiator"
	RoleController Role = "Controller"
	RoleSentinel   Role = "Sentinel"
	RoleFlex       Role = "Flex"
)

type QuestType string

const (
	QuestPlayMatches     QuestType = "PLAY_MATCHES"
	QuestWinMatches      QuestType = "WIN_MATCHES"
	QuestGiveCommends    QuestType = "GIVE_COMMENDS"
	QuestGetWinstreak    QuestType = "GET_WINSTREAK"
	QuestAddFriend       QuestType = "ADD_FRIEND"
	QuestCompleteProfile QuestType = "COMPLETE_PROFILE"
	QuestReachLevel      QuestType = "REACH_LEVEL"
)

type QuestCategory string

const (
	QuestDaily   QuestCategory = "DAILY"
	QuestMonthly QuestCategory = "MONTHLY"
	QuestUnique  QuestCategory = "UNIQUE"
)

// Quest is a static catalog entry. It is configuration, never persisted
// per user.
type Quest struct {
	ID          string        `json:"id"`
	Type        QuestType     `json:"type"`
	Category    QuestCategory `json:"category"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	XPReward    int           `json:"xpReward"`
}

// UserQuest is one player's progress row against a catalog entry.
type UserQuest struct {
	QuestID   string `json:"questId"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}

// FriendRequest is a directional edge held in the target's pending list
// until accepted or rejected.
type FriendRequest struct {
	FromID    string    `json:"fromId"`
	ToID      string    `json:"toId"`
	Timestamp time.Time `json:"timestamp"`
}

// Player is the persistent identity record. Level is always derived
// from XP via the level curve; the stored copy is a cache resynced on
// load.
type Player struct {
	ID              string   `json:"id"`
	Email           string   `json:"email,omitempty"`
	Username        string   `json:"username"`
	AvatarURL       string   `json:"avatarUrl,omitempty"`
	RiotID          string   `json:"riotId,omitempty"`
	RiotTag         string   `json:"riotTag,omitempty"`
	Rating          int      `json:"rating"`
	LastRatingDelta int      `json:"lastRatingDelta"`
	XP              int      `json:"xp"`
	Level           int      `json:"level"`
	Reputation      int      `json:"reputation"`
	Wins            int      `json:"wins"`
	Losses          int      `json:"losses"`
	Winstreak       int      `json:"winstreak"`
	PrimaryRole     Role     `json:"primaryRole,omitempty"`
	SecondaryRole   Role     `json:"secondaryRole,omitempty"`
	TopAgents       []string `json:"topAgents,omitempty"`
	IsBot           bool     `json:"isBot,omitempty"`
	IsAdmin         bool     `json:"isAdmin,omitempty"`

	Friends        []string        `json:"friends,omitempty"`
	FriendRequests []FriendRequest `json:"friendRequests,omitempty"`

	ActiveQuests          []UserQuest `json:"activeQuests,omitempty"`
	FriendQuestCountedIDs []string    `json:"friendQuestCountedIds,omitempty"`
	LastDailyQuestGen     time.Time   `json:"lastDailyQuestGen"`
	LastMonthlyQuestGen   time.Time   `json:"lastMonthlyQuestGen"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasGameIdentity reports whether the player linked an external game
// account. Queueing requires it.
func (p *Player) HasGameIdentity() bool {
	return p.RiotID != "" && p.RiotTag != ""
}

type Phase string

const (
	PhaseReadyCheck Phase = "READY_CHECK"
	PhaseDraft      Phase = "DRAFT"
	PhaseVeto       Phase = "VETO"
	PhaseLive       Phase = "LIVE"
	PhaseFinished   Phase = "FINISHED"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Score is one side's claim about the final result.
type Score struct {
	ScoreA int `json:"scoreA"`
	ScoreB int `json:"scoreB"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	IsSystem   bool      `json:"isSystem,omitempty"`
}

// PlayerSnapshot freezes the identity shown in match history at match
// time, independent of later profile edits.
type PlayerSnapshot struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      Role   `json:"role"`
}

// MatchRecord is the immutable historical artifact written once when a
// match finishes.
type MatchRecord struct {
	ID            string           `json:"id"`
	Date          time.Time        `json:"date"`
	Map           string           `json:"map"`
	CaptainA      string           `json:"captainA"`
	CaptainB      string           `json:"captainB"`
	Winner        Side             `json:"winner"`
	TeamAIDs      []string         `json:"teamAIds"`
	TeamBIDs      []string         `json:"teamBIds"`
	TeamASnapshot []PlayerSnapshot `json:"teamASnapshot"`
	TeamBSnapshot []PlayerSnapshot `json:"teamBSnapshot"`
	Score         string           `json:"score"`
}

// PlayerChange is one participant's queued settlement outcome. The
// reconciliation worker re-applies these idempotently.
type PlayerChange struct {
	PlayerID    string `json:"playerId"`
	RatingDelta int    `json:"ratingDelta"`
	NewRating   int    `json:"newRating"`
	IsWinner    bool   `json:"isWinner"`
}

// Settlement is the persisted outbox row for a finished match.
type Settlement struct {
	MatchID         string         `json:"matchId"`
	Changes         []PlayerChange `json:"changes"`
	ResultReported  bool           `json:"resultReported"`
	ResultProcessed bool           `json:"resultProcessed"`
	CreatedAt       time.Time      `json:"createdAt"`
	ProcessedAt     time.Time      `json:"processedAt"`
}

// ConductReport is a player-vs-player misconduct report.
type ConductReport struct {
	ID           string    `json:"id"`
	Reporter     string    `json:"reporter"`
	ReportedUser string    `json:"reportedUser"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}
