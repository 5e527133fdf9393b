package sentencegen

// Config controls the behavior of the Generator.
type Config struct {
	// Validators run in order on every generated exercise; the first
	// failure rejects it.
	Validators []Validator

	// MaxTokens is the token budget for each LLM response.
	MaxTokens int

	// ExerciseTemperature favours variety in generated exercises.
	ExerciseTemperature float64

	// GradingTemperature is lower to keep verdicts stable.
	GradingTemperature float64

	// FollowupTemperature is the lowest; answers should be precise.
	FollowupTemperature float64

	// InspirationWords is how many vocabulary entries to offer the model.
	// Zero disables inspiration.
	InspirationWords int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&KeywordLeakValidator{},
		},
		MaxTokens:           1024,
		ExerciseTemperature: 0.8,
		GradingTemperature:  0.5,
		FollowupTemperature: 0.3,
		InspirationWords:    10,
	}
}
