// Package recommend scores how well a server suits a user and blends the
// component scores with one of five named strategies.
package recommend

import (
	"strings"

	"github.com/okian/affinity/internal/domain/types"
)

// Strategy names a fixed-weight blend of the component scores.
type Strategy string

// Supported strategies.
const (
	StrategyContentBased  Strategy = "content_based"
	StrategyCollaborative Strategy = "collaborative"
	StrategySocial        Strategy = "social"
	StrategyTemporal      Strategy = "temporal"
	StrategyHybrid        Strategy = "hybrid"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyContentBased,
	StrategyCollaborative,
	StrategySocial,
	StrategyTemporal,
	StrategyHybrid,
}

// ParseStrategy resolves a strategy name case-insensitively.
func ParseStrategy(name string) (Strategy, bool) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := strategyWeights[s]; ok {
		return s, true
	}
	return "", false
}

// Component keys of Result.ComponentScores.
const (
	ComponentContentBased  = "content_based"
	ComponentCollaborative = "collaborative"
	ComponentSocial        = "social"
	ComponentTemporal      = "temporal"
	ComponentActivity      = "activity"
	ComponentSkillMatch    = "skill_match"
)

// Components lists the component keys in reporting order.
var Components = []string{
	ComponentContentBased,
	ComponentCollaborative,
	ComponentSocial,
	ComponentTemporal,
	ComponentActivity,
	ComponentSkillMatch,
}

// Pattern is a user's dominant activity pattern.
type Pattern string

// Known activity patterns.
const (
	PatternMorning        Pattern = "morning"
	PatternEvening        Pattern = "evening"
	PatternEveningWeekend Pattern = "evening_weekend"
	PatternWeekend        Pattern = "weekend"
	PatternConsistent     Pattern = "consistent"
	PatternVaried         Pattern = "varied"
	PatternUnknown        Pattern = "unknown"
)

// Normalize lower-cases and trims the pattern.
func (p Pattern) Normalize() Pattern {
	return Pattern(strings.ToLower(strings.TrimSpace(string(p))))
}

// Profile is the user side of a recommendation.
type Profile struct {
	UserID          string                      `json:"user_id,omitempty"`
	ActivityPattern Pattern                     `json:"activity_pattern,omitempty"`
	PeakHours       []int                       `json:"peak_hours"`
	PeakDays        types.Set                   `json:"peak_days"`
	SkillByGame     map[string]types.SkillLevel `json:"skill_by_game"`
}

// Signals carries sub-scores computed upstream for one (user, server) pair.
// A nil signal is treated as neutral.
type Signals struct {
	ContentBased  *float64 `json:"content_based,omitempty" validate:"omitempty,gte=0,lte=100"`
	Collaborative *float64 `json:"collaborative,omitempty" validate:"omitempty,gte=0,lte=100"`
	Social        *float64 `json:"social,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Server is a candidate server snapshot.
type Server struct {
	ID                 string           `json:"id" validate:"max=128"`
	GameID             string           `json:"game_id,omitempty"`
	ActivityTags       types.Set        `json:"activity_tags"`
	MemberCount        int              `json:"member_count"`
	ActiveChannelCount int              `json:"active_channel_count"`
	AgeInDays          int              `json:"age_in_days"`
	SkillLevel         types.SkillLevel `json:"skill_level,omitempty"`
	Signals            Signals          `json:"signals"`
}

// Result is the outcome of scoring one server for one user.
type Result struct {
	ServerID        string             `json:"server_id,omitempty"`
	FinalScore      float64            `json:"final_score"`
	Strategy        Strategy           `json:"strategy"`
	ComponentScores map[string]float64 `json:"component_scores"`
}
