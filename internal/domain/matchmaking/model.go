// Package matchmaking scores how well a recruiting team fits a player's
// matchmaking request.
//
// Every criterion is a pure function with its own neutral fallback, so a
// request with partial data still produces a usable score. The engine never
// returns an error.
package matchmaking

import "github.com/okian/affinity/internal/domain/types"

// Breakdown keys. There is deliberately no team size criterion.
const (
	CriterionSkill       = "skill"
	CriterionComposition = "composition"
	CriterionRegion      = "region"
	CriterionSchedule    = "schedule"
	CriterionLanguage    = "language"
)

// Criteria lists the breakdown keys in reporting order.
var Criteria = []string{
	CriterionSkill,
	CriterionComposition,
	CriterionRegion,
	CriterionSchedule,
	CriterionLanguage,
}

// Request holds a player's search criteria.
type Request struct {
	SkillLevel        types.SkillLevel `json:"skill_level"`
	PreferredRoles    types.Set        `json:"preferred_roles"`
	PreferredRegions  types.Set        `json:"preferred_regions"`
	AvailabilityHours types.Set        `json:"availability_hours"`
	Languages         types.Set        `json:"languages"`
}

// Team is a recruiting team's profile. CurrentSize and MaxSize are carried
// for callers but are not scored.
type Team struct {
	ID              string           `json:"id"`
	SkillLevel      types.SkillLevel `json:"skill_level"`
	DesiredRoles    map[string]int   `json:"desired_roles"`
	PreferredRegion string           `json:"preferred_region"`
	ActivityTimes   types.Set        `json:"activity_times"`
	Languages       types.Set        `json:"languages"`
	CurrentSize     int              `json:"current_size"`
	MaxSize         int              `json:"max_size"`
}

// Result is the outcome of scoring one team against one request.
type Result struct {
	TeamID     string             `json:"team_id,omitempty"`
	TotalScore float64            `json:"total_score"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Reasons    []string           `json:"reasons"`
}
