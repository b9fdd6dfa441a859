package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(weekday time.Weekday, hour, minute int) time.Time {
	// 2024-01-01 is a Monday
	base := time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
	offset := int(weekday - time.Monday)
	if offset < 0 {
		offset += 7
	}
	return base.AddDate(0, 0, offset)
}

func TestScore_ExactMatchIsMaximal(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)

	for _, ts := range []time.Time{
		date(time.Monday, 0, 0),
		date(time.Wednesday, 13, 37),
		date(time.Sunday, 23, 59),
	} {
		assert.InDelta(t, 1.0, scorer.Score(ts, ts), 1e-9)
	}
}

func TestScore_SymmetricAtEqualDistance(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)
	ref := date(time.Wednesday, 12, 0)

	// Two hours before and two hours after, same weekday
	before := date(time.Wednesday, 10, 0)
	after := date(time.Wednesday, 14, 0)
	assert.InDelta(t, scorer.Score(before, ref), scorer.Score(after, ref), 1e-9)

	// One weekday earlier and one later, same time of day
	earlier := date(time.Tuesday, 12, 0)
	later := date(time.Thursday, 12, 0)
	assert.InDelta(t, scorer.Score(earlier, ref), scorer.Score(later, ref), 1e-9)
}

func TestScore_WrapsAroundMidnight(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)
	ref := date(time.Monday, 0, 0)

	lateSunday := date(time.Monday, 23, 50).AddDate(0, 0, -1) // Sunday 23:50
	earlyMonday := date(time.Monday, 0, 10)

	late := scorer.Score(lateSunday, ref)
	early := scorer.Score(earlyMonday, ref)

	// Both sit ten minutes from midnight and must score high, not minimal
	assert.Greater(t, late, 0.8)
	assert.Greater(t, early, 0.8)
	assert.InDelta(t, late, early, 0.1)
}

func TestScore_WrapsAroundWeek(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)
	ref := date(time.Sunday, 12, 0)

	adjacent := scorer.Score(date(time.Monday, 12, 0), ref)
	opposite := scorer.Score(date(time.Wednesday, 12, 0), ref)

	// Sunday and Monday wrap to one day apart, Wednesday is the far side
	assert.Greater(t, adjacent, opposite)
}

func TestScore_MonotoneInTimeOfDayDistance(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)
	ref := date(time.Friday, 8, 0)

	prev := scorer.Score(ref, ref)
	for _, h := range []int{9, 10, 12, 15, 20} {
		cur := scorer.Score(date(time.Friday, h, 0), ref)
		assert.LessOrEqual(t, cur, prev, "score must not increase with distance (hour %d)", h)
		prev = cur
	}
}

func TestScore_OppositeExtremesNearZero(t *testing.T) {
	scorer := NewDefaultTemporalScorer(nil)
	ref := date(time.Monday, 2, 0)

	// Half a day and half a week away on both axes
	far := scorer.Score(date(time.Thursday, 14, 0), ref)
	assert.Less(t, far, 0.1)
}

func TestScore_StaysWithinBounds(t *testing.T) {
	scorer := NewDefaultTemporalScorer(&TemporalSimilarityConfig{
		TimeOfDayWeight: 1.0,
		DayOfWeekWeight: 0.0,
	})
	ref := date(time.Tuesday, 6, 30)

	for h := 0; h < 24; h++ {
		s := scorer.Score(date(time.Saturday, h, 0), ref)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestNewDefaultTemporalScorer_FallsBackToDefaults(t *testing.T) {
	scorer := NewDefaultTemporalScorer(&TemporalSimilarityConfig{})
	ts := date(time.Monday, 9, 0)
	assert.InDelta(t, 1.0, scorer.Score(ts, ts), 1e-9)
}
