package matchmaking

import (
	"math"
	"strings"

	"github.com/okian/affinity/internal/domain/similarity"
	"github.com/okian/affinity/internal/domain/types"
)

// Skill scoring constants.
const (
	unrankedSkillScore = 50.0
	skillLevelSpan     = 3.0
	skillGapPenalty    = 0.5
	skillGapThreshold  = 2
)

// Composition scoring constants.
const (
	flexibleTeamScore   = 0.80
	flexiblePlayerScore = 0.70
	partialFillBase     = 0.70
	partialFillSpan     = 0.25
	broadRolesScore     = 0.60
	broadRolesMinimum   = 3
	roleSimilarityBase  = 0.40
	roleSimilaritySpan  = 0.30
	roleMismatchFloor   = 0.30
)

// Shared neutral defaults.
const (
	missingRegionScore   = 0.70
	unknownRegionScore   = 0.30
	missingScheduleScore = 0.70
	noOverlapSchedule    = 0.50
	missingLanguageScore = 0.70
	linguaFrancaScore    = 0.60
	noLanguageScore      = 0.30
)

// SkillScore returns the skill breakdown value in [0, 100].
//
// An unranked request scores a flat 50 whatever the team level. Otherwise the
// score decays linearly over the three-level span, and a gap of two or more
// levels is halved on top of that: same level 100, one level ~66.7, two
// levels ~16.7, three levels 0.
func SkillScore(team, request types.SkillLevel) float64 {
	if request.IsUnranked() {
		return unrankedSkillScore
	}
	diff := team.Value() - request.Value()
	if diff < 0 {
		diff = -diff
	}
	score := math.Max(0, 1-float64(diff)/skillLevelSpan)
	if diff >= skillGapThreshold {
		score *= skillGapPenalty
	}
	return clamp01(score) * 100
}

// CompositionScore rates how well the player's preferred roles cover the
// roles the team still needs. Result is in [0, 1] and never below 0.30.
func CompositionScore(desired map[string]int, userRoles types.Set) float64 {
	needed := make(types.Set, len(desired))
	for role := range desired {
		needed.Add(role)
	}
	if needed.Len() == 0 {
		return flexibleTeamScore
	}
	if userRoles.Len() == 0 {
		return flexiblePlayerScore
	}

	matching := needed.Intersect(userRoles)
	if matching.Len() > 0 {
		fill := float64(matching.Len()) / float64(needed.Len())
		if fill >= 1.0 {
			return 1.0
		}
		return partialFillBase + fill*partialFillSpan
	}

	if userRoles.Len() >= broadRolesMinimum {
		return broadRolesScore
	}

	if sim := similarity.Jaccard(needed, userRoles); sim > 0 {
		return roleSimilarityBase + sim*roleSimilaritySpan
	}
	return roleMismatchFloor
}

// Region codes understood by the proximity table.
const (
	RegionNA      = "NA"
	RegionSA      = "SA"
	RegionEU      = "EU"
	RegionAsia    = "ASIA"
	RegionOceania = "OCEANIA"
	RegionAfrica  = "AFRICA"
)

var regionAliases = map[string]string{
	"US":   RegionNA,
	"CA":   RegionNA,
	"EUW":  RegionEU,
	"EUNE": RegionEU,
	"AS":   RegionAsia,
	"OCE":  RegionOceania,
	"OC":   RegionOceania,
	"AF":   RegionAfrica,
}

type regionPair struct{ a, b string }

// regionProximity holds each unordered pair once; lookups try both orders.
var regionProximity = map[regionPair]float64{
	{RegionNA, RegionSA}:          0.60,
	{RegionNA, RegionEU}:          0.50,
	{RegionNA, RegionAsia}:        0.40,
	{RegionNA, RegionOceania}:     0.40,
	{RegionNA, RegionAfrica}:      0.30,
	{RegionSA, RegionEU}:          0.40,
	{RegionSA, RegionAsia}:        0.25,
	{RegionSA, RegionOceania}:     0.25,
	{RegionSA, RegionAfrica}:      0.45,
	{RegionEU, RegionAsia}:        0.45,
	{RegionEU, RegionOceania}:     0.30,
	{RegionEU, RegionAfrica}:      0.60,
	{RegionAsia, RegionOceania}:   0.60,
	{RegionAsia, RegionAfrica}:    0.35,
	{RegionOceania, RegionAfrica}: 0.25,
}

// NormalizeRegion upper-cases a region code and resolves aliases.
func NormalizeRegion(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := regionAliases[code]; ok {
		return alias
	}
	return code
}

// RegionProximity returns how close two regions are in [0, 1]. The same
// region is 1; a pair missing from the table is 0.30.
func RegionProximity(a, b string) float64 {
	a, b = NormalizeRegion(a), NormalizeRegion(b)
	if a == b {
		return 1.0
	}
	if v, ok := regionProximity[regionPair{a, b}]; ok {
		return v
	}
	if v, ok := regionProximity[regionPair{b, a}]; ok {
		return v
	}
	return unknownRegionScore
}

// RegionScore returns the best proximity between the team's region and any
// of the player's preferred regions. Missing data on either side is 0.70.
func RegionScore(teamRegion string, preferred types.Set) float64 {
	if strings.TrimSpace(teamRegion) == "" || preferred.Len() == 0 {
		return missingRegionScore
	}
	best := 0.0
	for r := range preferred {
		if v := RegionProximity(teamRegion, r); v > best {
			best = v
		}
	}
	return best
}

// ScheduleScore compares the player's availability with the team's activity
// times. Either side empty is 0.70.
func ScheduleScore(availability, activity types.Set) float64 {
	if availability.Len() == 0 || activity.Len() == 0 {
		return missingScheduleScore
	}
	return scheduleBand(similarity.Jaccard(availability, activity))
}

// scheduleBand maps raw overlap onto a banded curve. No overlap is neutral
// because schedule data is sparse.
func scheduleBand(sim float64) float64 {
	switch {
	case sim >= 0.70:
		return 0.85 + (sim-0.70)*0.5
	case sim >= 0.40:
		return 0.70 + ((sim-0.40)/0.30)*0.15
	case sim >= 0.20:
		return 0.50 + ((sim-0.20)/0.20)*0.20
	case sim > 0:
		return 0.30 + (sim/0.20)*0.20
	default:
		return noOverlapSchedule
	}
}

// LanguageScore compares spoken languages. An empty player list is 0.70;
// English on either side lifts a zero overlap to 0.60.
func LanguageScore(userLanguages, teamLanguages types.Set) float64 {
	if userLanguages.Len() == 0 {
		return missingLanguageScore
	}
	if sim := similarity.Jaccard(userLanguages, teamLanguages); sim > 0 {
		return 0.50 + sim*0.50
	}
	if hasEnglish(userLanguages) || hasEnglish(teamLanguages) {
		return linguaFrancaScore
	}
	return noLanguageScore
}

func hasEnglish(s types.Set) bool {
	return s.Has("en") || s.Has("english")
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
