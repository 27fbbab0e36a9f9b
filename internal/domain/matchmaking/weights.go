package matchmaking

// Weights sets the contribution of each criterion to the total. Admin
// configuration is expected to validate that the five weights sum to 1;
// the engine applies them as given.
type Weights struct {
	Skill       float64 `json:"skill" koanf:"skill" validate:"gte=0,lte=1"`
	Composition float64 `json:"composition" koanf:"composition" validate:"gte=0,lte=1"`
	Region      float64 `json:"region" koanf:"region" validate:"gte=0,lte=1"`
	Schedule    float64 `json:"schedule" koanf:"schedule" validate:"gte=0,lte=1"`
	Language    float64 `json:"language" koanf:"language" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the weight set used when no admin set is configured.
func DefaultWeights() Weights {
	return Weights{
		Skill:       0.30,
		Composition: 0.25,
		Region:      0.20,
		Schedule:    0.15,
		Language:    0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Skill + w.Composition + w.Region + w.Schedule + w.Language
}

// ToMap returns the weights keyed by criterion name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		CriterionSkill:       w.Skill,
		CriterionComposition: w.Composition,
		CriterionRegion:      w.Region,
		CriterionSchedule:    w.Schedule,
		CriterionLanguage:    w.Language,
	}
}
