package roster

import "github.com/kapu/ikusa-server/internal/domain"

// Compare lines up two rosters. Every delta is b minus a.
func Compare(a, b domain.GuildStats) domain.StatsComparison {
	classes := make(map[string]int, len(a.ClassDistribution)+len(b.ClassDistribution))
	for class, count := range b.ClassDistribution {
		classes[class] += count
	}
	for class, count := range a.ClassDistribution {
		classes[class] -= count
	}

	return domain.StatsComparison{
		A:                     a,
		B:                     b,
		EligibleDelta:         b.EligiblePlayers - a.EligiblePlayers,
		AverageGearscoreDelta: round2(b.AverageGearscore - a.AverageGearscore),
		AverageAPDelta:        round2(b.AverageAP - a.AverageAP),
		AverageAAPDelta:       round2(b.AverageAAP - a.AverageAAP),
		AverageDPDelta:        round2(b.AverageDP - a.AverageDP),
		KillDeathRatioDelta:   round2(b.KillDeathRatio - a.KillDeathRatio),
		ClassDeltas:           classes,
	}
}
