package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderInterval(t *testing.T) {
	assert.Equal(t, 24*time.Hour, reminderInterval(map[string]interface{}{"frequency": "daily"}))
	assert.Equal(t, 7*24*time.Hour, reminderInterval(map[string]interface{}{"frequency": "Weekly"}))
	assert.Equal(t, 6*time.Hour, reminderInterval(map[string]interface{}{
		"frequency":     "custom",
		"intervalHours": float64(6), // JSON numbers decode as float64
	}))

	// unusable configs fall back to daily
	assert.Equal(t, 24*time.Hour, reminderInterval(map[string]interface{}{"frequency": "custom"}))
	assert.Equal(t, 24*time.Hour, reminderInterval(map[string]interface{}{}))
	assert.Equal(t, 24*time.Hour, reminderInterval(nil))
}

func TestAudienceMatches(t *testing.T) {
	// no audience means everyone
	assert.True(t, audienceMatches(map[string]interface{}{}, "mild"))
	assert.True(t, audienceMatches(map[string]interface{}{"audience": nil}, "mild"))
	assert.True(t, audienceMatches(map[string]interface{}{"audience": []interface{}{}}, "mild"))

	severeOnly := map[string]interface{}{"audience": []interface{}{"severe"}}
	assert.True(t, audienceMatches(severeOnly, "severe"))
	assert.True(t, audienceMatches(severeOnly, "Severe"))
	assert.False(t, audienceMatches(severeOnly, "mild"))

	str := map[string]interface{}{"audience": "moderate"}
	assert.True(t, audienceMatches(str, "moderate"))
	assert.False(t, audienceMatches(str, "mild"))
}

func TestNumericValue(t *testing.T) {
	assert.Equal(t, 6, numericValue(float64(6)))
	assert.Equal(t, 6, numericValue(6))
	assert.Equal(t, 6, numericValue(int64(6)))
	assert.Equal(t, 0, numericValue("6"))
	assert.Equal(t, 0, numericValue(nil))
}
