package constants

import "time"

const (
	ReadyCheckTimeout = 60 * time.Second
	ReadyCheckTick    = 1 * time.Second
	DraftGraceDelay   = 1 * time.Second
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MatchSize      = 10
	InitialRating  = 1000
	EloKFactor     = 40
	FlatRatingGain = 20
	StreakBonusCap = 10
)

const (
	LevelBaseXP = 300
	LevelStepXP = 100
)

const (
	SettlementInterval = 1 * time.Minute
	HistoryLimit       = 50
)

// MapPool is the competitive map rotation a veto runs down to one.
var MapPool = []string{
	"Ascent", "Bind", "Haven", "Split", "Lotus", "Sunset",
	"Pearl", "Icebox", "Breeze", "Fracture", "Abyss",
}

// BotNames seeds synthesized queue-filler identities.
var BotNames = []string{
	"TenZ", "Demon1", "Aspas", "Boaster", "FNS", "ScreaM",
	"Tarik", "Kyedae", "Shroud", "Mixwell", "cNed", "Derke",
}
