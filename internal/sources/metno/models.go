package metno

import "time"

type ForecastResponse struct {
	Properties struct {
		Meta struct {
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"meta"`
		Timeseries []Timeseries `json:"timeseries"`
	} `json:"properties"`
}

type Timeseries struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details InstantDetails `json:"details"`
		} `json:"instant"`
		Next1Hours  *Period `json:"next_1_hours"`
		Next6Hours  *Period `json:"next_6_hours"`
		Next12Hours *Period `json:"next_12_hours"`
	} `json:"data"`
}

type InstantDetails struct {
	AirPressureAtSeaLevel    *float64 `json:"air_pressure_at_sea_level"`
	AirTemperature           *float64 `json:"air_temperature"`
	CloudAreaFraction        *float64 `json:"cloud_area_fraction"`
	DewPointTemperature      *float64 `json:"dew_point_temperature"`
	FogAreaFraction          *float64 `json:"fog_area_fraction"`
	RelativeHumidity         *float64 `json:"relative_humidity"`
	UltravioletIndexClearSky *float64 `json:"ultraviolet_index_clear_sky"`
	WindFromDirection        *float64 `json:"wind_from_direction"`
	WindSpeed                *float64 `json:"wind_speed"`
	WindSpeedOfGust          *float64 `json:"wind_speed_of_gust"`

	// PrecipitationRate in mm/h, nowcast only.
	PrecipitationRate *float64 `json:"precipitation_rate"`
}

// Period summarises the hours following a timestamp.
type Period struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details struct {
		PrecipitationAmount        *float64 `json:"precipitation_amount"`
		ProbabilityOfPrecipitation *float64 `json:"probability_of_precipitation"`
		ProbabilityOfThunder       *float64 `json:"probability_of_thunder"`
		AirTemperatureMax          *float64 `json:"air_temperature_max"`
		AirTemperatureMin          *float64 `json:"air_temperature_min"`
	} `json:"details"`
}

// AlertsResponse is a GeoJSON feature collection of CAP warnings.
type AlertsResponse struct {
	Features []struct {
		Properties AlertProperties `json:"properties"`
		When       struct {
			Interval []time.Time `json:"interval"`
		} `json:"when"`
	} `json:"features"`
}

type AlertProperties struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Event       string `json:"event"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Severity    string `json:"severity"`
}

type Value struct {
	Value *float64 `json:"value"`
	Units string   `json:"units"`
}

type AirQualityResponse struct {
	Data struct {
		Time []struct {
			From      time.Time        `json:"from"`
			To        time.Time        `json:"to"`
			Variables map[string]Value `json:"variables"`
		} `json:"time"`
	} `json:"data"`
}
