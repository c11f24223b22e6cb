package roster

import (
	"math"
	"sort"
	"strings"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/util"
)

// DefaultTopPlayers is how many ranked players BuildStats keeps.
const DefaultTopPlayers = 10

// BuildStats aggregates a roster. Shai and Defense players are only counted in
// their category totals; every other figure covers eligible players only.
// Defense takes precedence, so each record lands in exactly one bucket.
func BuildStats(guild string, players []domain.PlayerRecord) domain.GuildStats {
	stats := domain.GuildStats{
		Guild:             strings.TrimSpace(guild),
		TotalPlayers:      len(players),
		ClassDistribution: make(map[string]int),
		TopPlayers:        []domain.RankedPlayer{},
	}

	var sumGS, sumAP, sumAAP, sumDP float64
	for _, p := range players {
		switch {
		case IsDefensePlayer(p):
			stats.DefensePlayers++
			continue
		case IsShaiPlayer(p):
			stats.ShaiPlayers++
			continue
		}

		gs := Gearscore(p)
		if stats.EligiblePlayers == 0 {
			stats.MinGearscore = gs
			stats.MaxGearscore = gs
		} else {
			stats.MinGearscore = math.Min(stats.MinGearscore, gs)
			stats.MaxGearscore = math.Max(stats.MaxGearscore, gs)
		}
		stats.EligiblePlayers++

		sumGS += gs
		sumAP += p.AP.Float64()
		sumAAP += p.AAP.Float64()
		sumDP += p.DP.Float64()
		stats.TotalKills += p.Kills
		stats.TotalDeaths += p.Deaths

		stats.ClassDistribution[classKey(p.MainClass)]++
	}

	if n := float64(stats.EligiblePlayers); n > 0 {
		stats.AverageGearscore = round2(sumGS / n)
		stats.AverageAP = round2(sumAP / n)
		stats.AverageAAP = round2(sumAAP / n)
		stats.AverageDP = round2(sumDP / n)
	}
	stats.KillDeathRatio = KillDeathRatio(stats.TotalKills, stats.TotalDeaths)
	stats.TopPlayers = TopPlayers(players, DefaultTopPlayers)

	return stats
}

// TopPlayers ranks eligible players by gearscore, highest first. Ties are
// broken by character name so the order is stable across runs.
func TopPlayers(players []domain.PlayerRecord, n int) []domain.RankedPlayer {
	ranked := make([]domain.RankedPlayer, 0, len(players))
	for _, p := range players {
		if !IsValidForStats(p) {
			continue
		}
		ranked = append(ranked, domain.RankedPlayer{
			FamilyName:    strings.TrimSpace(p.FamilyName),
			CharacterName: strings.TrimSpace(p.CharacterName),
			MainClass:     strings.TrimSpace(p.MainClass),
			Gearscore:     Gearscore(p),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Gearscore != ranked[j].Gearscore {
			return ranked[i].Gearscore > ranked[j].Gearscore
		}
		return util.Normalize(ranked[i].CharacterName) < util.Normalize(ranked[j].CharacterName)
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// KillDeathRatio treats zero deaths as one so a flawless roster still ranks.
func KillDeathRatio(kills, deaths int) float64 {
	if kills == 0 {
		return 0
	}
	if deaths == 0 {
		deaths = 1
	}
	return round2(float64(kills) / float64(deaths))
}

func classKey(class string) string {
	key := util.Normalize(class)
	if key == "" {
		return "unknown"
	}
	return key
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
