package quest

import "valorant-hub/internal/domain"

// catalog is the static quest pool. Rows are configuration only;
// per-player progress lives on the player record.
var catalog = []domain.Quest{
	{ID: "daily-play-2", Type: domain.QuestPlayMatches, Category: domain.QuestDaily, Description: "Play 2 matches", Target: 2, XPReward: 100},
	{ID: "daily-win-1", Type: domain.QuestWinMatches, Category: domain.QuestDaily, Description: "Win a match", Target: 1, XPReward: 150},
	{ID: "daily-commend-2", Type: domain.QuestGiveCommends, Category: domain.QuestDaily, Description: "Commend 2 teammates", Target: 2, XPReward: 50},

	{ID: "monthly-play-30", Type: domain.QuestPlayMatches, Category: domain.QuestMonthly, Description: "Play 30 matches this month", Target: 30, XPReward: 1000},
	{ID: "monthly-win-15", Type: domain.QuestWinMatches, Category: domain.QuestMonthly, Description: "Win 15 matches this month", Target: 15, XPReward: 1500},
	{ID: "monthly-streak-5", Type: domain.QuestGetWinstreak, Category: domain.QuestMonthly, Description: "Reach a 5 game winstreak", Target: 5, XPReward: 800},

	{ID: "unique-profile", Type: domain.QuestCompleteProfile, Category: domain.QuestUnique, Description: "Complete your profile", Target: 1, XPReward: 200},
	{ID: "unique-friends-3", Type: domain.QuestAddFriend, Category: domain.QuestUnique, Description: "Add 3 friends", Target: 3, XPReward: 300},
	{ID: "unique-level-5", Type: domain.QuestReachLevel, Category: domain.QuestUnique, Description: "Reach level 5", Target: 5, XPReward: 500},
	{ID: "unique-level-10", Type: domain.QuestReachLevel, Category: domain.QuestUnique, Description: "Reach level 10", Target: 10, XPReward: 1200},
}

// Catalog returns the full quest pool.
func Catalog() []domain.Quest {
	out := make([]domain.Quest, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (domain.Quest, bool) {
	for _, q := range catalog {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Quest{}, false
}
