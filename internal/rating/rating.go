package rating

import (
	"math"

	"valorant-hub/internal/constants"
)

// expectedScore is the Elo logistic expectation (0..1) against the
// opposing team's average rating.
func expectedScore(myRating, opponentAvg int) float64 {
	diff := float64(opponentAvg-myRating) / 400.0
	return 1.0 / (1.0 + math.Pow(10, diff))
}

// Delta computes the rating change for one finished match, integers
// only. The underdog gains more on an upset win and loses less on a
// loss than the favourite. Winstreaks grant extra points on a win,
// capped. streak is the winstreak before this game and only matters on
// wins. opponentAvg nil selects the flat +/-20 baseline.
func Delta(currentRating int, won bool, streak int, opponentAvg *int) int {
	result := 0.0
	if won {
		result = 1.0
	}

	var change int
	if opponentAvg != nil {
		expected := expectedScore(currentRating, *opponentAvg)
		change = int(math.Round(constants.EloKFactor * (result - expected)))
	} else {
		change = constants.FlatRatingGain
		if !won {
			change = -constants.FlatRatingGain
		}
	}

	if won {
		bonus := streak
		if bonus < 0 {
			bonus = 0
		}
		if bonus > constants.StreakBonusCap {
			bonus = constants.StreakBonusCap
		}
		change += bonus
	}
	return change
}

// Apply returns the rating after a match. Ratings never go negative.
func Apply(currentRating int, delta int) int {
	next := currentRating + delta
	if next < 0 {
		return 0
	}
	return next
}
