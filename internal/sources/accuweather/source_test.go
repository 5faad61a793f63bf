package accuweather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/sources/accuweather"
	"github.com/nimbusweather/nimbus/internal/weather"
)

const (
	geopositionJSON = `{"Key": "178086", "LocalizedName": "Amsterdam", "TimeZone": {"Name": "Europe/Amsterdam"}}`

	currentJSON = `[{
  "EpochTime": 1717236000, "WeatherText": "Partly sunny", "WeatherIcon": 3, "IsDayTime": true,
  "Temperature": {"Metric": {"Value": 18.0, "Unit": "C", "UnitType": 17}, "Imperial": {"Value": 64.0, "Unit": "F", "UnitType": 18}},
  "RealFeelTemperature": {"Imperial": {"Value": 50.0, "Unit": "F", "UnitType": 18}},
  "RelativeHumidity": 72,
  "Wind": {"Direction": {"Degrees": 225}, "Speed": {"Metric": {"Value": 18.0, "Unit": "km/h", "UnitType": 7}}},
  "Pressure": {"Metric": {"Value": 1015.0, "Unit": "mb", "UnitType": 14}},
  "Visibility": {"Metric": {"Value": 16.1, "Unit": "km", "UnitType": 6}}
}]`

	dailyJSON = `{"Headline": {"Text": "Showers Saturday afternoon"}, "DailyForecasts": [{
  "EpochDate": 1717218000,
  "Sun": {"EpochRise": 1717211000, "EpochSet": 1717270000},
  "Temperature": {"Minimum": {"Value": 11.0, "Unit": "C", "UnitType": 17}, "Maximum": {"Value": 21.0, "Unit": "C", "UnitType": 17}},
  "DegreeDaySummary": {"Heating": {"Value": 2.0, "Unit": "F", "UnitType": 18}, "Cooling": {"Value": 0.0, "Unit": "C", "UnitType": 17}},
  "HoursOfSun": 6.5,
  "AirAndPollen": [
    {"Name": "AirQuality", "Value": 30, "Category": "Good", "CategoryValue": 1},
    {"Name": "Grass", "Value": 12, "Category": "Moderate", "CategoryValue": 2},
    {"Name": "Tree", "Value": 40, "Category": "High", "CategoryValue": 3},
    {"Name": "UVIndex", "Value": 5, "Category": "Moderate", "CategoryValue": 2}
  ],
  "Day": {"Icon": 12, "IconPhrase": "Showers", "LongPhrase": "Showers in the afternoon",
    "PrecipitationProbability": 60, "ThunderstormProbability": 10,
    "Wind": {"Speed": {"Value": 14.4, "Unit": "km/h", "UnitType": 7}, "Direction": {"Degrees": 200}},
    "TotalLiquid": {"Value": 2.5, "Unit": "mm", "UnitType": 3},
    "Snow": {"Value": 0.0, "Unit": "cm", "UnitType": 4},
    "HoursOfPrecipitation": 2.0, "CloudCover": 70},
  "Night": {"Icon": 34, "IconPhrase": "Mostly clear"}
}]}`

	hourlyJSON = `[{
  "EpochDateTime": 1717236000, "WeatherIcon": 15, "IconPhrase": "Thunderstorms", "IsDaylight": true,
  "Temperature": {"Value": 64.4, "Unit": "F", "UnitType": 18},
  "Wind": {"Speed": {"Value": 10.8, "Unit": "km/h", "UnitType": 7}, "Direction": {"Degrees": 180}},
  "PrecipitationProbability": 55,
  "TotalLiquid": {"Value": 0.04, "Unit": "in", "UnitType": 1}
}]`

	minuteCastJSON = `{"Summary": {"Phrase": "Light rain"}, "Intervals": [
  {"StartEpochDateTime": 1717236000, "Minute": 0, "Dbz": 0},
  {"StartEpochDateTime": 1717236060, "Minute": 1, "Dbz": 23.0}
]}`

	airQualityJSON = `{"Data": [{"EpochDate": 1717236000, "Pollutants": [
  {"Type": "PM2_5", "Concentration": {"Value": 6.2, "Unit": "µg/m³"}},
  {"Type": "CO", "Concentration": {"Value": 250.0, "Unit": "µg/m³"}}
]}]}`

	climoJSON = `{"Normals": {"Temperatures": {
  "Maximum": {"Metric": {"Value": 20.1, "Unit": "C", "UnitType": 17}},
  "Minimum": {"Metric": {"Value": 10.9, "Unit": "C", "UnitType": 17}}
}}}`
)

type fakeAPI struct {
	geoposition  string
	daily        string
	hourlyStatus int
	calls        atomic.Int32
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		var body string
		switch path := r.URL.Path; {
		case path == "/locations/v1/cities/geoposition/search":
			body = f.geoposition
		case path == "/currentconditions/v1/178086":
			body = currentJSON
		case path == "/forecasts/v1/daily/15day/178086":
			assert.Equal(t, "true", r.URL.Query().Get("metric"))
			body = f.daily
		case path == "/forecasts/v1/hourly/72hour/178086":
			if f.hourlyStatus != 0 {
				w.WriteHeader(f.hourlyStatus)
				return
			}
			body = hourlyJSON
		case path == "/forecasts/v1/minute":
			body = minuteCastJSON
		case path == "/alerts/v1/178086":
			body = `[]`
		case path == "/airquality/v2/forecasts/hourly/72hour/178086":
			body = airQualityJSON
		case strings.HasPrefix(path, "/climo/v1/summary/") && strings.HasSuffix(path, "/178086"):
			body = climoJSON
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})
}

func newSource(t *testing.T, api *fakeAPI, apiKey string) *accuweather.Source {
	t.Helper()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	return accuweather.New(accuweather.Config{
		APIKey:     apiKey,
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test-accuweather")),
		Logger:     zerolog.Nop(),
	})
}

func testLocation() *weather.Location {
	return &weather.Location{
		ID:         "ams",
		Latitude:   52.37,
		Longitude:  4.89,
		TimeZone:   "Europe/Amsterdam",
		Source:     accuweather.ID,
		Parameters: map[string]map[string]string{accuweather.ID: {accuweather.ParamLocationKey: "178086"}},
	}
}

func TestSource_LocationParameters(t *testing.T) {
	t.Run("resolves key", func(t *testing.T) {
		src := newSource(t, &fakeAPI{geoposition: geopositionJSON}, "test-key")
		loc := testLocation()
		loc.Parameters = nil

		assert.True(t, src.NeedsLocationParameters(loc))
		params, err := src.RequestLocationParameters(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{accuweather.ParamLocationKey: "178086"}, params)
		assert.False(t, src.NeedsLocationParameters(testLocation()))
	})

	t.Run("no city nearby", func(t *testing.T) {
		src := newSource(t, &fakeAPI{geoposition: `{}`}, "test-key")

		_, err := src.RequestLocationParameters(context.Background(), testLocation())
		assert.ErrorIs(t, err, weather.ErrInvalidLocation)
	})

	t.Run("search fails", func(t *testing.T) {
		src := newSource(t, &fakeAPI{geoposition: `not json`}, "test-key")

		_, err := src.RequestLocationParameters(context.Background(), testLocation())
		assert.ErrorIs(t, err, weather.ErrRequestFailed)
		assert.NotErrorIs(t, err, weather.ErrInvalidLocation)
	})

	t.Run("missing key", func(t *testing.T) {
		src := newSource(t, &fakeAPI{geoposition: geopositionJSON}, "")

		_, err := src.RequestLocationParameters(context.Background(), testLocation())
		assert.ErrorIs(t, err, weather.ErrMissingAPIKey)
		assert.NotErrorIs(t, err, weather.ErrInvalidLocation)
	})
}

func TestSource_RequestWeather(t *testing.T) {
	api := &fakeAPI{daily: dailyJSON}
	src := newSource(t, api, "test-key")

	w, err := src.RequestWeather(context.Background(), testLocation(), weather.NewFeatures(weather.AllFeatures()...))
	require.NoError(t, err)

	require.NotNil(t, w.Current)
	c := w.Current
	assert.Equal(t, "Partly sunny", c.WeatherText)
	assert.Equal(t, weather.CodePartlyCloudy, *c.WeatherCode)
	assert.Equal(t, 18.0, *c.Temperature.Temperature)
	assert.InDelta(t, 10.0, *c.Temperature.RealFeel, 1e-9)
	assert.InDelta(t, 5.0, *c.Wind.Speed, 1e-9)
	assert.Equal(t, 225.0, *c.Wind.Degree)
	assert.Equal(t, 1015.0, *c.Pressure)
	assert.InDelta(t, 16100.0, *c.Visibility, 1e-6)
	assert.Equal(t, "Showers Saturday afternoon", c.DailyForecast)
	require.NotNil(t, c.AirQuality)
	assert.Equal(t, 6.2, *c.AirQuality.PM25)
	assert.InDelta(t, 0.25, *c.AirQuality.CO, 1e-9)

	ams, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	require.Len(t, w.Daily, 1)
	d := w.Daily[0]
	assert.True(t, d.Date.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, ams)))
	assert.Equal(t, 21.0, *d.Day.Temperature.Temperature)
	assert.Equal(t, "Showers in the afternoon", d.Day.WeatherText)
	assert.Equal(t, weather.CodeRain, *d.Day.WeatherCode)
	assert.Equal(t, 2.5, *d.Day.Precipitation.Total)
	assert.Equal(t, 0.0, *d.Day.Precipitation.Snow)
	assert.Equal(t, 60.0, *d.Day.PrecipitationProbability.Total)
	assert.Equal(t, 10.0, *d.Day.PrecipitationProbability.Thunderstorm)
	assert.Equal(t, 2.0, *d.Day.PrecipitationDuration.Total)
	assert.InDelta(t, 4.0, *d.Day.Wind.Speed, 1e-9)
	assert.Equal(t, 11.0, *d.Night.Temperature.Temperature)
	assert.Equal(t, weather.CodeClear, *d.Night.WeatherCode)
	assert.InDelta(t, 10.0/9, *d.DegreeDay.Heating, 1e-9)
	assert.Equal(t, 6.5, *d.SunshineDuration)
	assert.Equal(t, 5.0, *d.UV.Index)
	require.NotNil(t, d.Pollen)
	assert.Equal(t, 12.0, *d.Pollen.Grass)
	assert.Equal(t, 40.0, *d.Pollen.Tree)
	assert.Nil(t, d.Pollen.Birch)

	require.Len(t, w.Hourly, 1)
	h := w.Hourly[0]
	assert.Equal(t, weather.CodeThunderstorm, *h.WeatherCode)
	assert.InDelta(t, 18.0, *h.Temperature.Temperature, 1e-9)
	assert.InDelta(t, 3.0, *h.Wind.Speed, 1e-9)
	assert.InDelta(t, 1.016, *h.Precipitation.Total, 1e-9)
	assert.True(t, *h.IsDaylight)
	assert.NotNil(t, h.AirQuality)

	require.Len(t, w.Minutely, 2)
	assert.Equal(t, 0.0, *w.Minutely[0].PrecipitationIntensity)
	assert.InDelta(t, 1.0, *w.Minutely[1].PrecipitationIntensity, 0.01)
	assert.Equal(t, 1, w.Minutely[1].MinuteInterval)

	assert.NotNil(t, w.Alerts)
	assert.Empty(t, w.Alerts)

	require.NotNil(t, w.Normals)
	assert.Equal(t, 20.1, *w.Normals.DaytimeTemperature)
	assert.Equal(t, 10.9, *w.Normals.NighttimeTemperature)
}

func TestSource_RequestWeather_WithoutPollen(t *testing.T) {
	src := newSource(t, &fakeAPI{daily: dailyJSON}, "test-key")

	w, err := src.RequestWeather(context.Background(), testLocation(), weather.NewFeatures())
	require.NoError(t, err)
	assert.Nil(t, w.Current)
	assert.Nil(t, w.Daily[0].Pollen)
	assert.Nil(t, w.Alerts)
	assert.Nil(t, w.Normals)
}

func TestSource_RequestWeather_Errors(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		api     *fakeAPI
		loc     func() *weather.Location
		wantErr error
		noCalls bool
	}{
		{
			name:    "missing api key",
			api:     &fakeAPI{daily: dailyJSON},
			loc:     testLocation,
			wantErr: weather.ErrMissingAPIKey,
			noCalls: true,
		},
		{
			name:   "missing location key",
			apiKey: "test-key",
			api:    &fakeAPI{daily: dailyJSON},
			loc: func() *weather.Location {
				loc := testLocation()
				loc.Parameters = nil
				return loc
			},
			wantErr: weather.ErrInvalidLocation,
			noCalls: true,
		},
		{
			name:    "empty daily",
			apiKey:  "test-key",
			api:     &fakeAPI{daily: `{"DailyForecasts": []}`},
			loc:     testLocation,
			wantErr: weather.ErrInvalidData,
		},
		{
			name:    "hourly unauthorized",
			apiKey:  "test-key",
			api:     &fakeAPI{daily: dailyJSON, hourlyStatus: http.StatusUnauthorized},
			loc:     testLocation,
			wantErr: weather.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource(t, tt.api, tt.apiKey)

			w, err := src.RequestWeather(context.Background(), tt.loc(), weather.NewFeatures(weather.FeatureCurrent))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, w)
			if tt.noCalls {
				assert.Zero(t, tt.api.calls.Load())
			}
		})
	}
}

func TestSource_RequestSecondaryWeather(t *testing.T) {
	api := &fakeAPI{daily: dailyJSON}
	src := newSource(t, api, "test-key")

	w, err := src.RequestSecondaryWeather(context.Background(), testLocation(),
		weather.NewFeatures(weather.FeaturePollen, weather.FeatureAlert))
	require.NoError(t, err)

	assert.Equal(t, int32(2), api.calls.Load())
	assert.Nil(t, w.Current)
	assert.Nil(t, w.Hourly)
	require.Len(t, w.Daily, 1)
	assert.Equal(t, 40.0, *w.Daily[0].Pollen.Tree)
	assert.Nil(t, w.Daily[0].Day)
	assert.NotNil(t, w.Alerts)
}
