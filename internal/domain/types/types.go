// Package types contains value types shared by the scoring engines.
package types

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// SkillLevel is the coarse skill tier attached to players, teams and servers.
type SkillLevel string

// Known skill levels.
const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
	SkillUnranked     SkillLevel = "unranked"
	SkillAny          SkillLevel = "any"
)

// neutralSkillValue is used for unknown, empty and "any" levels.
const neutralSkillValue = 2

// Normalize lower-cases and trims the level.
func (s SkillLevel) Normalize() SkillLevel {
	return SkillLevel(strings.ToLower(strings.TrimSpace(string(s))))
}

// Value maps the level onto the 1..4 scale. Anything outside the four ranked
// tiers maps to 2.
func (s SkillLevel) Value() int {
	switch s.Normalize() {
	case SkillBeginner:
		return 1
	case SkillIntermediate:
		return 2
	case SkillAdvanced:
		return 3
	case SkillExpert:
		return 4
	default:
		return neutralSkillValue
	}
}

// IsUnranked reports whether the level is the explicit "unranked" marker.
func (s SkillLevel) IsUnranked() bool {
	return s.Normalize() == SkillUnranked
}

// IsRanked reports whether the level is one of the four ranked tiers.
func (s SkillLevel) IsRanked() bool {
	switch s.Normalize() {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return true
	default:
		return false
	}
}

// Set is an unordered collection of discrete labels. Labels are stored
// trimmed and lower-cased; empty labels are dropped.
type Set map[string]struct{}

// NewSet builds a Set from labels.
func NewSet(labels ...string) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts a label.
func (s Set) Add(label string) {
	label = normalizeLabel(label)
	if label == "" {
		return
	}
	s[label] = struct{}{}
}

// Has reports whether the label is present.
func (s Set) Has(label string) bool {
	_, ok := s[normalizeLabel(label)]
	return ok
}

// Len returns the number of labels. A nil Set has length 0.
func (s Set) Len() int { return len(s) }

// Intersect returns the labels present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for l := range small {
		if _, ok := large[l]; ok {
			out[l] = struct{}{}
		}
	}
	return out
}

// Union returns the labels present in either set.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for l := range s {
		out[l] = struct{}{}
	}
	for l := range other {
		out[l] = struct{}{}
	}
	return out
}

// Sorted returns the labels in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of labels. Duplicates collapse.
func (s *Set) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewSet(labels...)
	return nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
