package openmeteo

// Open-Meteo answers with column arrays: entry i of every array belongs to
// Time[i]. Missing values are JSON nulls.

type Current struct {
	Time                int64    `json:"time"`
	Temperature2m       *float64 `json:"temperature_2m"`
	RelativeHumidity2m  *float64 `json:"relative_humidity_2m"`
	DewPoint2m          *float64 `json:"dew_point_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	WeatherCode         *int     `json:"weather_code"`
	CloudCover          *float64 `json:"cloud_cover"`
	PressureMSL         *float64 `json:"pressure_msl"`
	Visibility          *float64 `json:"visibility"`
	WindSpeed10m        *float64 `json:"wind_speed_10m"`
	WindDirection10m    *float64 `json:"wind_direction_10m"`
	WindGusts10m        *float64 `json:"wind_gusts_10m"`
	UVIndex             *float64 `json:"uv_index"`
}

type Hourly struct {
	Time                     []int64    `json:"time"`
	Temperature2m            []*float64 `json:"temperature_2m"`
	RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
	DewPoint2m               []*float64 `json:"dew_point_2m"`
	ApparentTemperature      []*float64 `json:"apparent_temperature"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	Precipitation            []*float64 `json:"precipitation"`
	Rain                     []*float64 `json:"rain"`
	Showers                  []*float64 `json:"showers"`

	// Snowfall in cm.
	Snowfall         []*float64 `json:"snowfall"`
	WeatherCode      []*int     `json:"weather_code"`
	PressureMSL      []*float64 `json:"pressure_msl"`
	CloudCover       []*float64 `json:"cloud_cover"`
	Visibility       []*float64 `json:"visibility"`
	WindSpeed10m     []*float64 `json:"wind_speed_10m"`
	WindDirection10m []*float64 `json:"wind_direction_10m"`
	WindGusts10m     []*float64 `json:"wind_gusts_10m"`
	UVIndex          []*float64 `json:"uv_index"`
	IsDay            []*int     `json:"is_day"`
}

type Daily struct {
	Time    []int64    `json:"time"`
	Sunrise []*int64   `json:"sunrise"`
	Sunset  []*int64   `json:"sunset"`
	UVMax   []*float64 `json:"uv_index_max"`

	// SunshineDuration in seconds.
	SunshineDuration   []*float64 `json:"sunshine_duration"`
	PrecipitationHours []*float64 `json:"precipitation_hours"`
}

type Minutely15 struct {
	Time          []int64    `json:"time"`
	Precipitation []*float64 `json:"precipitation"`
}

type ForecastResponse struct {
	Latitude         float64     `json:"latitude"`
	Longitude        float64     `json:"longitude"`
	Timezone         string      `json:"timezone"`
	UTCOffsetSeconds int         `json:"utc_offset_seconds"`
	Current          *Current    `json:"current"`
	Hourly           *Hourly     `json:"hourly"`
	Daily            *Daily      `json:"daily"`
	Minutely15       *Minutely15 `json:"minutely_15"`
}

// AirQualityHourly holds pollutants in µg/m³ and pollen in grains/m³.
type AirQualityHourly struct {
	Time            []int64    `json:"time"`
	PM10            []*float64 `json:"pm10"`
	PM25            []*float64 `json:"pm2_5"`
	CarbonMonoxide  []*float64 `json:"carbon_monoxide"`
	NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  []*float64 `json:"sulphur_dioxide"`
	Ozone           []*float64 `json:"ozone"`
	AlderPollen     []*float64 `json:"alder_pollen"`
	BirchPollen     []*float64 `json:"birch_pollen"`
	GrassPollen     []*float64 `json:"grass_pollen"`
	MugwortPollen   []*float64 `json:"mugwort_pollen"`
	OlivePollen     []*float64 `json:"olive_pollen"`
	RagweedPollen   []*float64 `json:"ragweed_pollen"`
}

type AirQualityResponse struct {
	Hourly *AirQualityHourly `json:"hourly"`
}
