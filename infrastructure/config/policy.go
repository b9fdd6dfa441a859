package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Policy is the runtime-tunable recommendation and dialog behavior. It
// lives in a yaml file so operators can adjust scoring without a deploy;
// the watcher reloads it on change.
type Policy struct {
	// RecommendationWindowWeeks is the trailing history span for scoring
	RecommendationWindowWeeks int `yaml:"recommendation_window_weeks" validate:"gte=1,lte=52"`

	// TimeOfDayWeight and DayOfWeekWeight tune the temporal similarity axes
	TimeOfDayWeight float64 `yaml:"time_of_day_weight" validate:"gte=0,lte=1"`
	DayOfWeekWeight float64 `yaml:"day_of_week_weight" validate:"gte=0,lte=1"`

	// EmotionOffersEnabled toggles the emotion-matched category picks
	EmotionOffersEnabled bool `yaml:"emotion_offers_enabled"`
}

// DefaultPolicy returns the built-in policy used when no file is configured.
func DefaultPolicy() *Policy {
	return &Policy{
		RecommendationWindowWeeks: 4,
		TimeOfDayWeight:           0.7,
		DayOfWeekWeight:           0.3,
		EmotionOffersEnabled:      true,
	}
}

// Window converts the configured week count into a duration.
func (p *Policy) Window() time.Duration {
	return time.Duration(p.RecommendationWindowWeeks) * 7 * 24 * time.Hour
}

// LoadPolicy reads and validates a policy file. A missing path yields the
// default policy rather than an error.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	if err := validator.New().Struct(policy); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if policy.TimeOfDayWeight+policy.DayOfWeekWeight <= 0 {
		return nil, fmt.Errorf("invalid policy: axis weights must not both be zero")
	}

	return policy, nil
}
