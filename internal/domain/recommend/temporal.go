package recommend

import (
	"strconv"

	"github.com/okian/affinity/internal/domain/similarity"
	"github.com/okian/affinity/internal/domain/types"
)

// Neutral temporal values.
const (
	noTemporalDataScore = 50.0
	untaggedServerScore = 60.0
	noPeakHoursScore    = 50.0
)

// Temporal sub-score weights, renormalized over the sub-scores that have data.
const (
	patternWeight  = 0.50
	peakHourWeight = 0.35
	weekendWeight  = 0.15
)

// Activity tags.
const (
	TagMorning   = "morning"
	TagAfternoon = "afternoon"
	TagEvening   = "evening"
	TagNight     = "night"
	TagWeekend   = "weekend"
)

// patternTags lists the tags each pattern expects. The first entry is primary.
var patternTags = map[Pattern][]string{
	PatternMorning:        {TagMorning, TagAfternoon},
	PatternEvening:        {TagEvening, TagNight},
	PatternEveningWeekend: {TagEvening, TagWeekend, TagNight},
	PatternWeekend:        {TagWeekend, TagEvening, TagAfternoon},
	PatternConsistent:     {TagMorning, TagAfternoon, TagEvening},
	PatternVaried:         {TagAfternoon, TagEvening, TagMorning, TagNight},
}

var adjacentTags = map[string][]string{
	TagMorning:   {TagAfternoon},
	TagAfternoon: {TagMorning, TagEvening},
	TagEvening:   {TagAfternoon, TagNight},
	TagNight:     {TagEvening},
	TagWeekend:   {TagEvening, TagAfternoon},
}

// tagHours is the canonical hour range of each tag. Night wraps midnight.
var tagHours = map[string][]int{
	TagMorning:   hourRange(6, 11),
	TagAfternoon: hourRange(12, 17),
	TagEvening:   hourRange(18, 22),
	TagNight:     {23, 0, 1, 2, 3},
	TagWeekend:   hourRange(0, 23),
}

var weekendDays = types.NewSet("friday", "saturday", "sunday")

func hourRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for h := from; h <= to; h++ {
		out = append(out, h)
	}
	return out
}

// ExpectedTags returns the tags a pattern expects, primary first. Unknown
// patterns return nil.
func ExpectedTags(p Pattern) []string {
	return patternTags[p.Normalize()]
}

// TemporalScore rates how well the server's activity times fit the user.
//
// No pattern and no peak hours is 50; a server without tags is 60. Otherwise
// pattern match, peak-hour overlap and weekend preference are blended over
// whichever of them the profile has data for.
func TemporalScore(profile Profile, server Server) float64 {
	expected := ExpectedTags(profile.ActivityPattern)
	hours := validHours(profile.PeakHours)
	if len(expected) == 0 && len(hours) == 0 {
		return noTemporalDataScore
	}
	if server.ActivityTags.Len() == 0 {
		return untaggedServerScore
	}

	var sum, weights float64
	if len(expected) > 0 {
		sum += PatternMatchScore(profile.ActivityPattern, server.ActivityTags) * patternWeight
		weights += patternWeight
	}
	if len(hours) > 0 {
		sum += PeakHoursScore(hours, server.ActivityTags) * peakHourWeight
		weights += peakHourWeight
	}
	if profile.PeakDays.Len() > 0 {
		sum += WeekendPreferenceScore(profile.PeakDays) * weekendWeight
		weights += weekendWeight
	}
	return clamp(sum/weights, 0, 100)
}

// PatternMatchScore compares a pattern's expected tags with the server tags.
// A primary hit scores 85 plus 5 per secondary hit up to 15; secondary hits
// alone score 65 plus up to 15 by ratio; otherwise the adjacency fallback
// applies. An unknown pattern is neutral.
func PatternMatchScore(pattern Pattern, serverTags types.Set) float64 {
	expected := ExpectedTags(pattern)
	if len(expected) == 0 {
		return noTemporalDataScore
	}
	primary, secondary := expected[0], expected[1:]
	matched := 0
	for _, tag := range secondary {
		if serverTags.Has(tag) {
			matched++
		}
	}
	if serverTags.Has(primary) {
		return 85 + min(float64(matched)*5, 15)
	}
	if matched > 0 {
		return 65 + float64(matched)/float64(len(secondary))*15
	}
	return AdjacencyScore(expected, serverTags)
}

// AdjacencyScore counts user tags that have a neighbouring tag on the
// server: 40 plus up to 20 by ratio, or a flat 25 when nothing is adjacent.
func AdjacencyScore(userTags []string, serverTags types.Set) float64 {
	if len(userTags) == 0 {
		return 25
	}
	matched := 0
	for _, tag := range userTags {
		for _, adj := range adjacentTags[tag] {
			if serverTags.Has(adj) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 25
	}
	return 40 + float64(matched)/float64(len(userTags))*20
}

// PeakHoursScore is the Jaccard overlap between the user's peak hours and the
// hours covered by the server tags, rescaled to 20 + sim*80. No valid peak
// hours is 50.
func PeakHoursScore(peakHours []int, serverTags types.Set) float64 {
	hours := validHours(peakHours)
	if len(hours) == 0 {
		return noPeakHoursScore
	}
	user := make(types.Set, len(hours))
	for _, h := range hours {
		user.Add(strconv.Itoa(h))
	}
	server := make(types.Set, 24)
	for tag := range serverTags {
		for _, h := range tagHours[tag] {
			server.Add(strconv.Itoa(h))
		}
	}
	return 20 + similarity.Jaccard(user, server)*80
}

// WeekendPreferenceScore bands the share of peak days that fall on
// friday, saturday or sunday: 90 from two thirds, 70 from one third, else 35.
func WeekendPreferenceScore(peakDays types.Set) float64 {
	if peakDays.Len() == 0 {
		return 35
	}
	ratio := float64(peakDays.Intersect(weekendDays).Len()) / float64(peakDays.Len())
	switch {
	case ratio >= 0.67:
		return 90
	case ratio >= 0.33:
		return 70
	default:
		return 35
	}
}

func validHours(hours []int) []int {
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h >= 0 && h <= 23 {
			out = append(out, h)
		}
	}
	return out
}
