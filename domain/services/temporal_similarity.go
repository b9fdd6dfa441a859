package services

import (
	"math"
	"time"
)

// TemporalScorer scores how characteristic a past instant is of a reference
// instant (0.0 to 1.0). This is a domain service that encapsulates the
// temporal similarity algorithm used for purchase recommendations.
type TemporalScorer interface {
	// Score calculates similarity between a past timestamp and a reference
	// timestamp. Exact equality scores 1.0; growing distance on either the
	// time-of-day or the day-of-week axis only ever lowers the score.
	Score(past, reference time.Time) float64
}

// TemporalSimilarityConfig configures the similarity calculation
type TemporalSimilarityConfig struct {
	TimeOfDayWeight float64 // Weight given to hour-of-day closeness (0.0 to 1.0)
	DayOfWeekWeight float64 // Weight given to weekday closeness (0.0 to 1.0)
}

// DefaultTemporalSimilarityConfig returns a balanced default configuration.
// Time of day dominates: a coffee bought every morning should beat a snack
// bought on the same weekday at a different hour.
func DefaultTemporalSimilarityConfig() *TemporalSimilarityConfig {
	return &TemporalSimilarityConfig{
		TimeOfDayWeight: 0.7,
		DayOfWeekWeight: 0.3,
	}
}

const (
	minutesPerDay  = 24 * 60
	halfDayMinutes = minutesPerDay / 2
	// halfWeekDays is the largest circular distance between two weekdays
	// on a continuous 7-day ring.
	halfWeekDays = 3.5
)

// DefaultTemporalScorer provides temporal similarity using weighted
// closeness along two independent circular axes.
type DefaultTemporalScorer struct {
	config *TemporalSimilarityConfig
}

// NewDefaultTemporalScorer creates a new temporal scorer
func NewDefaultTemporalScorer(config *TemporalSimilarityConfig) *DefaultTemporalScorer {
	if config == nil || config.TimeOfDayWeight+config.DayOfWeekWeight <= 0 {
		config = DefaultTemporalSimilarityConfig()
	}
	return &DefaultTemporalScorer{config: config}
}

// Score calculates similarity between a past and a reference timestamp.
// Pure function of its inputs; no clock access, no side effects.
func (s *DefaultTemporalScorer) Score(past, reference time.Time) float64 {
	todSim := s.timeOfDayCloseness(past, reference)
	dowSim := s.dayOfWeekCloseness(past, reference)

	// Combine with weights, normalized so an exact match scores 1.0
	totalWeight := s.config.TimeOfDayWeight + s.config.DayOfWeekWeight
	total := (todSim*s.config.TimeOfDayWeight + dowSim*s.config.DayOfWeekWeight) / totalWeight

	return math.Min(math.Max(total, 0.0), 1.0)
}

// timeOfDayCloseness maps the circular minute-of-day distance onto [0, 1].
// 23:50 and 00:10 are twenty minutes apart, not twenty-three hours.
func (s *DefaultTemporalScorer) timeOfDayCloseness(a, b time.Time) float64 {
	am := float64(a.Hour()*60 + a.Minute())
	bm := float64(b.Hour()*60 + b.Minute())
	return 1.0 - circularDistance(am, bm, minutesPerDay)/halfDayMinutes
}

// dayOfWeekCloseness maps the circular weekday distance onto [0, 1].
// Sunday and Monday are one day apart, not six.
func (s *DefaultTemporalScorer) dayOfWeekCloseness(a, b time.Time) float64 {
	ad := float64(a.Weekday())
	bd := float64(b.Weekday())
	return 1.0 - circularDistance(ad, bd, 7)/halfWeekDays
}

// circularDistance returns the shortest distance between two positions on a
// ring of the given period.
func circularDistance(a, b, period float64) float64 {
	d := math.Abs(a - b)
	if d > period/2 {
		d = period - d
	}
	return d
}
