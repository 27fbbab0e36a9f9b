// Package skillcalc derives a skill tier from coarse player statistics when
// no rating is available for a game.
package skillcalc

import (
	"math"

	"github.com/okian/affinity/internal/domain/types"
)

const (
	playtimeCapHours   = 1000.0
	playtimeMaxPoints  = 60.0
	achievementPerCent = 0.4
)

// Level thresholds on the 0..100 score.
const (
	expertThreshold       = 75.0
	advancedThreshold     = 50.0
	intermediateThreshold = 30.0
)

// Estimate is a derived skill score and its tier.
type Estimate struct {
	Score       float64          `json:"skill_score"`
	Level       types.SkillLevel `json:"skill_level"`
	Playtime    float64          `json:"playtime_component"`
	Achievement float64          `json:"achievement_component"`
}

// Fallback scores playtime up to 60 points, saturating at 1000 hours, and
// achievement completion at 0.4 points per percent.
func Fallback(playtimeHours, achievementPercent float64) Estimate {
	if math.IsNaN(playtimeHours) || playtimeHours < 0 {
		playtimeHours = 0
	}
	if math.IsNaN(achievementPercent) {
		achievementPercent = 0
	}
	playtime := round1(math.Min(playtimeHours/playtimeCapHours, 1) * playtimeMaxPoints)
	achievement := round1(math.Max(0, math.Min(100, achievementPercent)) * achievementPerCent)
	score := round1(playtime + achievement)
	return Estimate{
		Score:       score,
		Level:       LevelFor(score),
		Playtime:    playtime,
		Achievement: achievement,
	}
}

// LevelFor maps a 0..100 score onto a skill tier.
func LevelFor(score float64) types.SkillLevel {
	switch {
	case score >= expertThreshold:
		return types.SkillExpert
	case score >= advancedThreshold:
		return types.SkillAdvanced
	case score >= intermediateThreshold:
		return types.SkillIntermediate
	default:
		return types.SkillBeginner
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
