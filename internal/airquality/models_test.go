package airquality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/airquality"
)

func ptr(v float64) *float64 { return &v }

func TestAirQuality_Index(t *testing.T) {
	tests := []struct {
		name     string
		aq       airquality.AirQuality
		expected int
	}{
		{"zero", airquality.AirQuality{PM25: ptr(0)}, 0},
		{"threshold", airquality.AirQuality{PM25: ptr(15)}, 50},
		{"between thresholds", airquality.AirQuality{PM25: ptr(10)}, 35},
		{"past last threshold", airquality.AirQuality{PM25: ptr(200)}, 550},
		{"negative clamps", airquality.AirQuality{PM25: ptr(-3)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := tt.aq.Index(airquality.PollutantPM25)
			require.NotNil(t, idx)
			assert.Equal(t, tt.expected, *idx)
		})
	}
}

func TestAirQuality_MissingPollutant(t *testing.T) {
	aq := airquality.AirQuality{PM25: ptr(10)}

	assert.Nil(t, aq.Index(airquality.PollutantO3))
	assert.True(t, aq.IsValid())
}

func TestAirQuality_Empty(t *testing.T) {
	var aq airquality.AirQuality

	assert.False(t, aq.IsValid())
	assert.Nil(t, aq.AQI())
	assert.Equal(t, airquality.Level(""), aq.Level())
	assert.Empty(t, aq.Color())

	var nilAQ *airquality.AirQuality
	assert.False(t, nilAQ.IsValid())
	assert.Nil(t, nilAQ.AQI())
}

func TestAirQuality_AQIIsHighestIndex(t *testing.T) {
	aq := airquality.AirQuality{PM25: ptr(10), NO2: ptr(30)}

	aqi := aq.AQI()
	require.NotNil(t, aqi)
	assert.Equal(t, 51, *aqi)
	assert.Equal(t, airquality.LevelPoor, aq.Level())
	assert.Equal(t, "#ff712b", aq.Color())
}

func TestLevelFromIndex(t *testing.T) {
	tests := []struct {
		index    int
		expected airquality.Level
	}{
		{0, airquality.LevelExcellent},
		{20, airquality.LevelExcellent},
		{21, airquality.LevelFair},
		{100, airquality.LevelPoor},
		{150, airquality.LevelUnhealthy},
		{250, airquality.LevelVeryUnhealthy},
		{251, airquality.LevelDangerous},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, airquality.LevelFromIndex(tt.index), "index %d", tt.index)
	}
}
