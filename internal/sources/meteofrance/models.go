package meteofrance

// Amounts maps an accumulation window ("1h", "3h", "6h", "24h") to a value.
type Amounts map[string]*float64

type Position struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Dept     string  `json:"dept"`
	Timezone string  `json:"timezone"`
}

type Condition struct {
	Icon string `json:"icon"`
	Desc string `json:"desc"`
}

type HourlyForecast struct {
	Dt int64 `json:"dt"`
	T  struct {
		Value     *float64 `json:"value"`
		Windchill *float64 `json:"windchill"`
	} `json:"T"`
	Humidity *float64 `json:"humidity"`
	SeaLevel *float64 `json:"sea_level"`
	Wind     struct {
		Speed     *float64 `json:"speed"`
		Gust      *float64 `json:"gust"`
		Direction *float64 `json:"direction"`
	} `json:"wind"`
	Rain    Amounts    `json:"rain"`
	Snow    Amounts    `json:"snow"`
	Clouds  *float64   `json:"clouds"`
	Weather *Condition `json:"weather"`
}

type DailyForecast struct {
	Dt int64 `json:"dt"`
	T  struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"T"`
	Humidity struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"humidity"`
	Precipitation Amounts    `json:"precipitation"`
	UV            *float64   `json:"uv"`
	Weather12H    *Condition `json:"weather12H"`
	Sun           struct {
		Rise int64 `json:"rise"`
		Set  int64 `json:"set"`
	} `json:"sun"`
}

// ProbabilityForecast holds probabilities in % over the 3 and 6 hours
// following Dt.
type ProbabilityForecast struct {
	Dt       int64    `json:"dt"`
	Rain     Amounts  `json:"rain"`
	Snow     Amounts  `json:"snow"`
	Freezing *float64 `json:"freezing"`
}

type ForecastResponse struct {
	Position            Position              `json:"position"`
	UpdatedOn           int64                 `json:"updated_on"`
	DailyForecast       []DailyForecast       `json:"daily_forecast"`
	Forecast            []HourlyForecast      `json:"forecast"`
	ProbabilityForecast []ProbabilityForecast `json:"probability_forecast"`
}

// RainResponse lists rain levels from 1 (none) to 4 (heavy).
type RainResponse struct {
	UpdatedOn int64 `json:"updated_on"`
	Forecast  []struct {
		Dt   int64  `json:"dt"`
		Rain int    `json:"rain"`
		Desc string `json:"desc"`
	} `json:"forecast"`
}

type WarningsResponse struct {
	UpdateTime       int64  `json:"update_time"`
	EndValidityTime  int64  `json:"end_validity_time"`
	DomainID         string `json:"domain_id"`
	ColorMax         int    `json:"color_max"`
	PhenomenonsItems []struct {
		PhenomenonID         string `json:"phenomenon_id"`
		PhenomenonMaxColorID int    `json:"phenomenon_max_color_id"`
	} `json:"phenomenons_items"`
}

type NormalsResponse struct {
	Monthly []struct {
		Month int `json:"month"`
		T     struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"T"`
	} `json:"monthly_normals"`
}
