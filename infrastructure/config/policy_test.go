package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_EmptyPathYieldsDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, 4, policy.RecommendationWindowWeeks)
	assert.Equal(t, 4*7*24*time.Hour, policy.Window())
	assert.True(t, policy.EmotionOffersEnabled)
}

func TestLoadPolicy_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte("recommendation_window_weeks: 2\ntime_of_day_weight: 0.5\nday_of_week_weight: 0.5\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 2, policy.RecommendationWindowWeeks)
	assert.Equal(t, 0.5, policy.TimeOfDayWeight)
	assert.Equal(t, 0.5, policy.DayOfWeekWeight)
}

func TestLoadPolicy_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte("recommendation_window_weeks: 0\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicy_RejectsZeroWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte("time_of_day_weight: 0\nday_of_week_weight: 0\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}
