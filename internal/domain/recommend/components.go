package recommend

import "github.com/okian/affinity/internal/domain/types"

// neutralScore is used for every component whose input is missing.
const neutralScore = 50.0

// ActivityScore favours small, recently created, moderately active servers.
// It sums a member band, up to 30 for active channels and an age bonus.
func ActivityScore(memberCount, activeChannels, ageInDays int) float64 {
	var members float64
	switch {
	case memberCount >= 5 && memberCount <= 20:
		members = 40
	case memberCount >= 21 && memberCount <= 100:
		members = 35
	case memberCount >= 101 && memberCount <= 500:
		members = 25
	case memberCount > 500:
		members = 15
	}

	activity := min(float64(max(activeChannels, 0))*10, 30)

	var age float64
	switch {
	case ageInDays < 30:
		age = 15
	case ageInDays < 90:
		age = 10
	}

	return clamp(members+activity+age, 0, 100)
}

// skillMatchTable maps the level difference onto a score.
var skillMatchTable = [...]float64{100, 70, 40, 20}

// SkillMatchScore compares the user's and server's skill tiers with a step
// table: 100, 70, 40, 20 for a gap of 0..3 levels, 10 beyond.
func SkillMatchScore(user, server types.SkillLevel) float64 {
	diff := user.Value() - server.Value()
	if diff < 0 {
		diff = -diff
	}
	if diff < len(skillMatchTable) {
		return skillMatchTable[diff]
	}
	return 10
}

// serverSkillScore looks up the user's skill for the server's game. Missing
// data on either side is neutral.
func serverSkillScore(profile Profile, server Server) float64 {
	if server.GameID == "" || server.SkillLevel.Normalize() == "" {
		return neutralScore
	}
	user, ok := profile.SkillByGame[server.GameID]
	if !ok || user.Normalize() == "" {
		return neutralScore
	}
	return SkillMatchScore(user, server.SkillLevel)
}

func signal(v *float64) float64 {
	if v == nil {
		return neutralScore
	}
	return clamp(*v, 0, 100)
}
