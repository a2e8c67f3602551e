package quest

import (
	"time"

	"valorant-hub/internal/domain"
	"valorant-hub/internal/rating"
)

// State is a player's quest ledger together with the generation marks
// that drive daily and monthly resets.
type State struct {
	Quests         []domain.UserQuest
	LastDailyGen   time.Time
	LastMonthlyGen time.Time
}

func categoryOf(questID string) (domain.QuestCategory, bool) {
	q, ok := Lookup(questID)
	if !ok {
		return "", false
	}
	return q.Category, true
}

func freshRows(category domain.QuestCategory) []domain.UserQuest {
	var rows []domain.UserQuest
	for _, q := range catalog {
		if q.Category == category {
			rows = append(rows, domain.UserQuest{QuestID: q.ID})
		}
	}
	return rows
}

func hasCategory(quests []domain.UserQuest, category domain.QuestCategory) bool {
	for _, uq := range quests {
		if c, ok := categoryOf(uq.QuestID); ok && c == category {
			return true
		}
	}
	return false
}

func dropCategory(quests []domain.UserQuest, category domain.QuestCategory) []domain.UserQuest {
	kept := quests[:0]
	for _, uq := range quests {
		if c, ok := categoryOf(uq.QuestID); ok && c == category {
			continue
		}
		kept = append(kept, uq)
	}
	return kept
}

// GenerateIfNeeded regenerates the daily set when forced, missing, or
// last generated before today's local midnight; the monthly set on
// month or year rollover; and adds unique quests not present yet.
// Regeneration replaces a category with zero-progress rows, a reset
// rather than a merge. Returns the new state and whether it changed.
func GenerateIfNeeded(state State, now time.Time, forceReset bool) (State, bool) {
	changed := false
	quests := make([]domain.UserQuest, len(state.Quests))
	copy(quests, state.Quests)

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	needsDaily := forceReset ||
		!hasCategory(quests, domain.QuestDaily) ||
		(!state.LastDailyGen.IsZero() && state.LastDailyGen.Before(startOfDay))
	if needsDaily {
		quests = dropCategory(quests, domain.QuestDaily)
		quests = append(quests, freshRows(domain.QuestDaily)...)
		state.LastDailyGen = now
		changed = true
	}

	sameMonth := !state.LastMonthlyGen.IsZero() &&
		state.LastMonthlyGen.Month() == now.Month() &&
		state.LastMonthlyGen.Year() == now.Year()
	needsMonthly := forceReset || !hasCategory(quests, domain.QuestMonthly) || !sameMonth
	if needsMonthly {
		quests = dropCategory(quests, domain.QuestMonthly)
		quests = append(quests, freshRows(domain.QuestMonthly)...)
		state.LastMonthlyGen = now
		changed = true
	}

	for _, q := range catalog {
		if q.Category != domain.QuestUnique {
			continue
		}
		found := false
		for _, uq := range quests {
			if uq.QuestID == q.ID {
				found = true
				break
			}
		}
		if !found {
			quests = append(quests, domain.UserQuest{QuestID: q.ID})
			changed = true
		}
	}

	state.Quests = quests
	return state, changed
}

// RecordProgress advances every non-completed quest of the given type.
// forceValue, when non-nil, sets progress to an absolute value (used
// for "current winstreak" or "current level" style quests); otherwise
// progress increments by amount. Progress clamps to the target and
// completion flips exactly when the target is reached. Completed rows
// are never touched again.
func RecordProgress(quests []domain.UserQuest, qtype domain.QuestType, amount int, forceValue *int) []domain.UserQuest {
	out := make([]domain.UserQuest, len(quests))
	copy(out, quests)

	for i, uq := range out {
		def, ok := Lookup(uq.QuestID)
		if !ok || def.Type != qtype || uq.Completed {
			continue
		}

		progress := uq.Progress
		if forceValue != nil {
			progress = *forceValue
		} else {
			progress += amount
		}
		if progress > def.Target {
			progress = def.Target
		}

		out[i].Progress = progress
		out[i].Completed = progress >= def.Target
	}
	return out
}

// ClaimResult carries the outcome of a successful claim.
type ClaimResult struct {
	Quests   []domain.UserQuest
	NewXP    int
	NewLevel int
	Claimed  bool
	XPGained int
}

// Claim grants a completed quest's XP reward exactly once. Unknown,
// incomplete, or already claimed quests are a silent no-op. When the
// reward levels the player up, REACH_LEVEL quests are re-evaluated
// immediately against the new level.
func Claim(quests []domain.UserQuest, questID string, currentXP, currentLevel int) ClaimResult {
	noop := ClaimResult{Quests: quests, NewXP: currentXP, NewLevel: currentLevel}

	def, ok := Lookup(questID)
	if !ok {
		return noop
	}

	idx := -1
	for i, uq := range quests {
		if uq.QuestID == questID {
			idx = i
			break
		}
	}
	if idx < 0 || !quests[idx].Completed || quests[idx].Claimed {
		return noop
	}

	out := make([]domain.UserQuest, len(quests))
	copy(out, quests)
	out[idx].Claimed = true

	newXP := currentXP + def.XPReward
	newLevel := rating.Level(newXP)
	if newLevel > currentLevel {
		out = RecordProgress(out, domain.QuestReachLevel, 0, &newLevel)
	}

	return ClaimResult{
		Quests:   out,
		NewXP:    newXP,
		NewLevel: newLevel,
		Claimed:  true,
		XPGained: def.XPReward,
	}
}
