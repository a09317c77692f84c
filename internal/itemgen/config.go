package itemgen

// Config controls the behavior of the LLMSynthesizer.
type Config struct {
	// Validators is the ordered list of validators run on every decoded
	// batch. The first failure stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DistinctValidator{},
		},
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}
