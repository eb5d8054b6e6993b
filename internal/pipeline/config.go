package pipeline

import "time"

// StepConfig is the sampling budget for one generation step.
type StepConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Config controls the content generation steps.
type Config struct {
	// Language is the language every generated text is written in.
	Language string `yaml:"language"`

	Topics    StepConfig `yaml:"topics"`
	Knowledge StepConfig `yaml:"knowledge"`
	Questions StepConfig `yaml:"questions"`
	Metadata  StepConfig `yaml:"metadata"`
	Notes     StepConfig `yaml:"notes"`

	// Validators run in order on every generated question. The first
	// failure rejects the whole batch.
	Validators []Validator `yaml:"-"`

	// Now stamps prompts with the current date. Nil means time.Now.
	Now func() time.Time `yaml:"-"`
}

// DefaultConfig returns the standard per-step budgets and validator chain.
func DefaultConfig() Config {
	return Config{
		Language:  "English",
		Topics:    StepConfig{MaxTokens: 512, Temperature: 0.7},
		Knowledge: StepConfig{MaxTokens: 2048, Temperature: 0.3},
		Questions: StepConfig{MaxTokens: 8192, Temperature: 0.5},
		Metadata:  StepConfig{MaxTokens: 1024, Temperature: 0.3},
		Notes:     StepConfig{MaxTokens: 8192, Temperature: 0.3},
		Validators: []Validator{
			&StructuralValidator{},
			&ChoicesValidator{},
		},
	}
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
