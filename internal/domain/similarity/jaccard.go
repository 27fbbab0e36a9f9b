// Package similarity holds the set similarity primitive shared by the
// matchmaking and recommendation engines.
package similarity

import "github.com/okian/affinity/internal/domain/types"

// Jaccard returns |a ∩ b| / |a ∪ b| in [0, 1].
//
// If either set is empty the result is 0, not 1: having nothing to compare
// counts as no similarity. Callers that want a neutral value for empty
// inputs must branch before calling.
func Jaccard(a, b types.Set) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	inter := a.Intersect(b).Len()
	if inter == 0 {
		return 0
	}
	union := a.Len() + b.Len() - inter
	return float64(inter) / float64(union)
}

// JaccardLabels is Jaccard over raw label slices.
func JaccardLabels(a, b []string) float64 {
	return Jaccard(types.NewSet(a...), types.NewSet(b...))
}
