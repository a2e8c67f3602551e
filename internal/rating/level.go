package rating

import (
	"math"

	"valorant-hub/internal/constants"
)

// Progress describes where a cumulative XP total sits on the level
// curve: reaching level 2 costs 300 XP and every later level costs 100
// more than the previous one, open-ended.
type Progress struct {
	Level          int `json:"level"`
	CurrentLevelXP int `json:"currentLevelXP"`
	XPForNextLevel int `json:"xpForNextLevel"`
}

// xpToReach is the cumulative XP needed to reach level; the arithmetic
// series 300 + 400 + ... in closed form.
func xpToReach(level int) int {
	n := level - 1
	if n <= 0 {
		return 0
	}
	// sum of n terms starting at LevelBaseXP with step LevelStepXP
	return n*constants.LevelBaseXP + constants.LevelStepXP*n*(n-1)/2
}

// stepFor is the XP needed to clear the given level.
func stepFor(level int) int {
	return constants.LevelBaseXP + constants.LevelStepXP*(level-1)
}

// LevelProgress maps total XP to the current level, the XP inside that
// level, and the requirement for the next one.
func LevelProgress(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}

	// Closed-form estimate of the level, then correct for rounding.
	// 50L^2 + 150L - 200 <= totalXP at level L+1's threshold.
	b := float64(constants.LevelBaseXP) - float64(constants.LevelStepXP)/2
	disc := b*b + 2*float64(constants.LevelStepXP)*float64(totalXP)
	level := int((math.Sqrt(disc)-b)/float64(constants.LevelStepXP)) + 1
	if level < 1 {
		level = 1
	}
	for level > 1 && xpToReach(level) > totalXP {
		level--
	}
	for xpToReach(level+1) <= totalXP {
		level++
	}

	return Progress{
		Level:          level,
		CurrentLevelXP: totalXP - xpToReach(level),
		XPForNextLevel: stepFor(level),
	}
}

// Level is a thin wrapper returning only the level for a total.
func Level(totalXP int) int {
	return LevelProgress(totalXP).Level
}
