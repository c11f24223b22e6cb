// Package roster holds the eligibility rules and the aggregate math applied to
// guild rosters.
package roster

import (
	"sort"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/util"
)

const (
	classDefense = "defesa"
	classShai    = "shai"
)

// exclusions lists family and character names that always play Defesa,
// whatever class label the upload carries. Lowercase, compared after
// util.Normalize. Never mutated after init.
var exclusions = map[string]struct{}{
	"lagswitch": {},
}

// IsExcludedName reports whether a family or character name is a known
// Defesa alias. Empty names never match.
func IsExcludedName(name string) bool {
	key := util.Normalize(name)
	if key == "" {
		return false
	}
	_, ok := exclusions[key]
	return ok
}

// Exclusions returns a sorted copy of the exclusion set.
func Exclusions() []string {
	names := make([]string, 0, len(exclusions))
	for name := range exclusions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsDefensePlayer(p domain.PlayerRecord) bool {
	if util.Normalize(p.MainClass) == classDefense {
		return true
	}
	return IsExcludedName(p.FamilyName) || IsExcludedName(p.CharacterName)
}

func IsShaiPlayer(p domain.PlayerRecord) bool {
	return util.Normalize(p.MainClass) == classShai
}

// IsValidForStats excludes Shai and Defense players from aggregates.
func IsValidForStats(p domain.PlayerRecord) bool {
	return !IsShaiPlayer(p) && !IsDefensePlayer(p)
}

// ComputeGearscore returns max(ap, aap) + dp. Negative inputs are not clamped.
func ComputeGearscore(ap, aap, dp domain.Stat) float64 {
	attack := ap.Float64()
	if alt := aap.Float64(); alt > attack {
		attack = alt
	}
	return attack + dp.Float64()
}

func Gearscore(p domain.PlayerRecord) float64 {
	return ComputeGearscore(p.AP, p.AAP, p.DP)
}

func Classify(p domain.PlayerRecord) domain.Classification {
	return domain.Classification{
		Defense:       IsDefensePlayer(p),
		ValidForStats: IsValidForStats(p),
		Gearscore:     Gearscore(p),
	}
}
