package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/weather"
)

func TestWrapper_Normalize(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	w := &weather.Wrapper{
		Hourly: []weather.Hourly{
			{Date: base.Add(2 * time.Hour), WeatherText: "third"},
			{Date: base, WeatherText: "first"},
			{Date: base.Add(time.Hour), WeatherText: "second"},
			{Date: base, WeatherText: "duplicate"},
		},
		Daily: []weather.Daily{
			{Date: base.AddDate(0, 0, 1)},
			{Date: base},
		},
	}

	w.Normalize()

	require.Len(t, w.Hourly, 3)
	assert.Equal(t, "first", w.Hourly[0].WeatherText)
	assert.Equal(t, "second", w.Hourly[1].WeatherText)
	assert.Equal(t, "third", w.Hourly[2].WeatherText)
	require.Len(t, w.Daily, 2)
	assert.Equal(t, base, w.Daily[0].Date)
	assert.Nil(t, w.Minutely)
}

func TestHalfDayOf(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, paris)

	tests := []struct {
		name     string
		at       time.Time
		wantDate time.Time
		wantDay  bool
	}{
		{"morning start", time.Date(2024, 6, 1, 6, 0, 0, 0, paris), june1, true},
		{"afternoon", time.Date(2024, 6, 1, 17, 59, 0, 0, paris), june1, true},
		{"evening start", time.Date(2024, 6, 1, 18, 0, 0, 0, paris), june1, false},
		{"late evening", time.Date(2024, 6, 1, 23, 0, 0, 0, paris), june1, false},
		{"early next morning", time.Date(2024, 6, 2, 5, 0, 0, 0, paris), june1, false},
		{"utc input", time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC), june1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, isDay := weather.HalfDayOf(tt.at, paris)
			assert.True(t, tt.wantDate.Equal(date), "got %s", date)
			assert.Equal(t, tt.wantDay, isDay)
		})
	}
}

func TestBucketHalfDays(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	at := func(day, hour int) time.Time { return time.Date(2024, 6, day, hour, 0, 0, 0, paris) }
	rain := weather.CodeRain
	cloudy := weather.CodeCloudy

	hourly := []weather.Hourly{
		{
			Date:          at(1, 9),
			WeatherCode:   &cloudy,
			Temperature:   &weather.Temperature{Temperature: weather.Ptr(18.0)},
			Precipitation: &weather.Precipitation{Total: weather.Ptr(0.5)},
			Wind:          &weather.Wind{Speed: weather.Ptr(3.0), Degree: weather.Ptr(90.0)},
			CloudCover:    weather.Ptr(40.0),
		},
		{
			Date:                     at(1, 15),
			WeatherCode:              &rain,
			WeatherText:              "Rain",
			Temperature:              &weather.Temperature{Temperature: weather.Ptr(24.0)},
			Precipitation:            &weather.Precipitation{Total: weather.Ptr(1.5)},
			PrecipitationProbability: &weather.Precipitation{Total: weather.Ptr(70.0)},
			Wind:                     &weather.Wind{Speed: weather.Ptr(6.0), Degree: weather.Ptr(180.0)},
			CloudCover:               weather.Ptr(80.0),
		},
		{Date: at(1, 23), Temperature: &weather.Temperature{Temperature: weather.Ptr(14.0)}},
		{Date: at(2, 5), Temperature: &weather.Temperature{Temperature: weather.Ptr(11.0)}},
		{Date: at(2, 7), Temperature: &weather.Temperature{Temperature: weather.Ptr(13.0)}},
	}

	daily := weather.BucketHalfDays(hourly, paris)
	require.Len(t, daily, 2)

	first := daily[0]
	assert.True(t, first.Date.Equal(at(1, 0)))
	require.NotNil(t, first.Day)
	assert.Equal(t, 24.0, *first.Day.Temperature.Temperature)
	assert.InDelta(t, 2.0, *first.Day.Precipitation.Total, 1e-9)
	assert.Equal(t, 70.0, *first.Day.PrecipitationProbability.Total)
	assert.Equal(t, 6.0, *first.Day.Wind.Speed)
	assert.Equal(t, 180.0, *first.Day.Wind.Degree)
	assert.Equal(t, 60.0, *first.Day.CloudCover)
	assert.Equal(t, weather.CodeRain, *first.Day.WeatherCode)
	assert.Equal(t, "Rain", first.Day.WeatherText)

	// 23:00 and 05:00 the next morning are both the night of June 1.
	require.NotNil(t, first.Night)
	assert.Equal(t, 11.0, *first.Night.Temperature.Temperature)
	assert.Nil(t, first.Night.Precipitation)

	second := daily[1]
	assert.True(t, second.Date.Equal(at(2, 0)))
	require.NotNil(t, second.Day)
	assert.Nil(t, second.Night)
}

func TestInferMinuteIntervals(t *testing.T) {
	tests := []struct {
		name     string
		offsets  []int
		expected []int
	}{
		{"uneven gaps", []int{0, 5, 15}, []int{5, 10, 10}},
		{"regular", []int{0, 15, 30, 45}, []int{15, 15, 15, 15}},
		{"single entry", []int{0}, []int{5}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.InferMinuteIntervals(tt.offsets, 5))
		})
	}
}

func TestProbabilitySchedule_At(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	schedule := weather.ProbabilitySchedule{
		{Start: start, SixHour: weather.Ptr(20.0)},
		{Start: start, ThreeHour: weather.Ptr(40.0)},
	}

	tests := []struct {
		name     string
		at       time.Time
		expected *float64
	}{
		{"three hour window wins", start.Add(time.Hour), weather.Ptr(40.0)},
		{"six hour window after three hour ends", start.Add(4 * time.Hour), weather.Ptr(20.0)},
		{"outside every window", start.Add(6 * time.Hour), nil},
		{"before schedule", start.Add(-time.Hour), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schedule.At(tt.at))
		})
	}
}
