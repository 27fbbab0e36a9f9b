package matchmaking

import (
	"math"
	"sort"
)

// Reason thresholds on the [0, 100] breakdown scale.
const (
	strongSkillThreshold       = 90.0
	strongCompositionThreshold = 90.0
	sameRegionScore            = 100.0
	strongScheduleThreshold    = 80.0
	strongLanguageThreshold    = 80.0
	weakSkillThreshold         = 40.0
	distantRegionThreshold     = 30.0
)

// CalculateDetailedCompatibility scores team against request.
//
// Each criterion is computed on its natural [0, 1] scale, reported in the
// breakdown on [0, 100], and blended as Σ score*weight*100. Weights are used
// as supplied. The total is clamped to [0, 100].
func CalculateDetailedCompatibility(team Team, request Request, weights Weights) Result {
	components := map[string]float64{
		CriterionSkill:       SkillScore(team.SkillLevel, request.SkillLevel) / 100,
		CriterionComposition: CompositionScore(team.DesiredRoles, request.PreferredRoles),
		CriterionRegion:      RegionScore(team.PreferredRegion, request.PreferredRegions),
		CriterionSchedule:    ScheduleScore(request.AvailabilityHours, team.ActivityTimes),
		CriterionLanguage:    LanguageScore(request.Languages, team.Languages),
	}

	w := weights.ToMap()
	breakdown := make(map[string]float64, len(components))
	total := 0.0
	for _, c := range Criteria {
		v := clamp01(components[c])
		breakdown[c] = round2(v * 100)
		total += v * w[c] * 100
	}

	return Result{
		TeamID:     team.ID,
		TotalScore: round2(clamp(total, 0, 100)),
		Breakdown:  breakdown,
		Reasons:    Reasons(breakdown),
	}
}

// Reasons turns a breakdown into short human-readable notes.
func Reasons(breakdown map[string]float64) []string {
	reasons := make([]string, 0, len(Criteria))
	if breakdown[CriterionSkill] >= strongSkillThreshold {
		reasons = append(reasons, "Skill levels are closely matched")
	}
	if breakdown[CriterionComposition] >= strongCompositionThreshold {
		reasons = append(reasons, "Your roles fill the team's open positions")
	}
	if breakdown[CriterionRegion] == sameRegionScore {
		reasons = append(reasons, "Same region for low latency")
	}
	if breakdown[CriterionSchedule] >= strongScheduleThreshold {
		reasons = append(reasons, "Play schedules overlap well")
	}
	if breakdown[CriterionLanguage] >= strongLanguageThreshold {
		reasons = append(reasons, "You share a common language")
	}
	if breakdown[CriterionSkill] < weakSkillThreshold {
		reasons = append(reasons, "Noticeable skill gap")
	}
	if breakdown[CriterionRegion] <= distantRegionThreshold {
		reasons = append(reasons, "Distant regions may add latency")
	}
	return reasons
}

// RankTeams scores every team and orders them best first. Ties are broken by
// team id so the order is deterministic.
func RankTeams(request Request, teams []Team, weights Weights) []Result {
	results := make([]Result, 0, len(teams))
	for i := range teams {
		results = append(results, CalculateDetailedCompatibility(teams[i], request, weights))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].TeamID < results[j].TeamID
	})
	return results
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
