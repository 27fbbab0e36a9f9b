package recommend

import (
	"math"
	"sort"
)

// strategyWeights holds the blend of each strategy. Every row sums to 1.
var strategyWeights = map[Strategy]map[string]float64{
	StrategyContentBased: {
		ComponentContentBased: 0.80,
		ComponentActivity:     0.20,
	},
	StrategyCollaborative: {
		ComponentCollaborative: 0.60,
		ComponentSocial:        0.40,
	},
	StrategySocial: {
		ComponentSocial:        0.70,
		ComponentCollaborative: 0.30,
	},
	StrategyTemporal: {
		ComponentTemporal: 0.60,
		ComponentActivity: 0.40,
	},
	StrategyHybrid: {
		ComponentContentBased:  0.25,
		ComponentCollaborative: 0.20,
		ComponentSocial:        0.15,
		ComponentTemporal:      0.15,
		ComponentActivity:      0.15,
		ComponentSkillMatch:    0.10,
	},
}

// Resolve returns s when it is a known strategy and hybrid otherwise.
func Resolve(s Strategy) Strategy {
	if parsed, ok := ParseStrategy(string(s)); ok {
		return parsed
	}
	return StrategyHybrid
}

// StrategyWeights returns a copy of the component weights of a strategy.
func StrategyWeights(s Strategy) map[string]float64 {
	src := strategyWeights[Resolve(s)]
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Blend combines component scores with the strategy's weights. Missing
// components count as neutral. The result is in [0, 100].
func Blend(s Strategy, components map[string]float64) float64 {
	total := 0.0
	for component, w := range strategyWeights[Resolve(s)] {
		v, ok := components[component]
		if !ok {
			v = neutralScore
		}
		total += clamp(v, 0, 100) * w
	}
	return round2(clamp(total, 0, 100))
}

// Score computes every component for one user and server and blends them.
func Score(profile Profile, server Server, strategy Strategy) Result {
	strategy = Resolve(strategy)
	components := map[string]float64{
		ComponentContentBased:  signal(server.Signals.ContentBased),
		ComponentCollaborative: signal(server.Signals.Collaborative),
		ComponentSocial:        signal(server.Signals.Social),
		ComponentTemporal:      TemporalScore(profile, server),
		ComponentActivity:      ActivityScore(server.MemberCount, server.ActiveChannelCount, server.AgeInDays),
		ComponentSkillMatch:    serverSkillScore(profile, server),
	}
	for k, v := range components {
		components[k] = round2(clamp(v, 0, 100))
	}
	return Result{
		ServerID:        server.ID,
		FinalScore:      Blend(strategy, components),
		Strategy:        strategy,
		ComponentScores: components,
	}
}

// RankServers scores every server and orders them best first, breaking ties
// by server id.
func RankServers(profile Profile, servers []Server, strategy Strategy) []Result {
	results := make([]Result, 0, len(servers))
	for i := range servers {
		results = append(results, Score(profile, servers[i], strategy))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].ServerID < results[j].ServerID
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
