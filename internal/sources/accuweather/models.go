package accuweather

// Value is a measurement tagged with its unit type code.
type Value struct {
	Value    *float64 `json:"Value"`
	Unit     string   `json:"Unit"`
	UnitType *int     `json:"UnitType"`
}

// Measure carries a value in both unit systems.
type Measure struct {
	Metric   *Value `json:"Metric"`
	Imperial *Value `json:"Imperial"`
}

type Direction struct {
	Degrees *float64 `json:"Degrees"`
}

type Wind struct {
	Direction *Direction `json:"Direction"`
	Speed     *Value     `json:"Speed"`
}

// CurrentWind reports speed in both systems.
type CurrentWind struct {
	Direction *Direction `json:"Direction"`
	Speed     *Measure   `json:"Speed"`
}

type LocationResponse struct {
	Key           string `json:"Key"`
	LocalizedName string `json:"LocalizedName"`
	TimeZone      struct {
		Name string `json:"Name"`
	} `json:"TimeZone"`
}

type CurrentConditions struct {
	EpochTime                int64        `json:"EpochTime"`
	WeatherText              string       `json:"WeatherText"`
	WeatherIcon              *int         `json:"WeatherIcon"`
	IsDayTime                bool         `json:"IsDayTime"`
	Temperature              *Measure     `json:"Temperature"`
	RealFeelTemperature      *Measure     `json:"RealFeelTemperature"`
	RealFeelTemperatureShade *Measure     `json:"RealFeelTemperatureShade"`
	ApparentTemperature      *Measure     `json:"ApparentTemperature"`
	WindChillTemperature     *Measure     `json:"WindChillTemperature"`
	WetBulbTemperature       *Measure     `json:"WetBulbTemperature"`
	RelativeHumidity         *float64     `json:"RelativeHumidity"`
	DewPoint                 *Measure     `json:"DewPoint"`
	Wind                     *CurrentWind `json:"Wind"`
	WindGust                 *CurrentWind `json:"WindGust"`
	UVIndex                  *float64     `json:"UVIndex"`
	Visibility               *Measure     `json:"Visibility"`
	CloudCover               *float64     `json:"CloudCover"`
	Ceiling                  *Measure     `json:"Ceiling"`
	Pressure                 *Measure     `json:"Pressure"`
}

type HalfDay struct {
	Icon                     *int     `json:"Icon"`
	IconPhrase               string   `json:"IconPhrase"`
	LongPhrase               string   `json:"LongPhrase"`
	PrecipitationProbability *float64 `json:"PrecipitationProbability"`
	ThunderstormProbability  *float64 `json:"ThunderstormProbability"`
	RainProbability          *float64 `json:"RainProbability"`
	SnowProbability          *float64 `json:"SnowProbability"`
	IceProbability           *float64 `json:"IceProbability"`
	Wind                     *Wind    `json:"Wind"`
	WindGust                 *Wind    `json:"WindGust"`
	TotalLiquid              *Value   `json:"TotalLiquid"`
	Rain                     *Value   `json:"Rain"`
	Snow                     *Value   `json:"Snow"`
	Ice                      *Value   `json:"Ice"`
	HoursOfPrecipitation     *float64 `json:"HoursOfPrecipitation"`
	HoursOfRain              *float64 `json:"HoursOfRain"`
	HoursOfSnow              *float64 `json:"HoursOfSnow"`
	HoursOfIce               *float64 `json:"HoursOfIce"`
	CloudCover               *float64 `json:"CloudCover"`
}

// AirAndPollen is one entry of the daily air and pollen summary. Pollen
// values are grains/m³.
type AirAndPollen struct {
	Name          string   `json:"Name"`
	Value         *float64 `json:"Value"`
	Category      string   `json:"Category"`
	CategoryValue *int     `json:"CategoryValue"`
}

type DailyForecast struct {
	EpochDate int64 `json:"EpochDate"`
	Sun       struct {
		EpochRise int64 `json:"EpochRise"`
		EpochSet  int64 `json:"EpochSet"`
	} `json:"Sun"`
	Temperature struct {
		Minimum *Value `json:"Minimum"`
		Maximum *Value `json:"Maximum"`
	} `json:"Temperature"`
	RealFeelTemperature struct {
		Minimum *Value `json:"Minimum"`
		Maximum *Value `json:"Maximum"`
	} `json:"RealFeelTemperature"`
	RealFeelTemperatureShade struct {
		Minimum *Value `json:"Minimum"`
		Maximum *Value `json:"Maximum"`
	} `json:"RealFeelTemperatureShade"`
	DegreeDaySummary struct {
		Heating *Value `json:"Heating"`
		Cooling *Value `json:"Cooling"`
	} `json:"DegreeDaySummary"`
	HoursOfSun   *float64       `json:"HoursOfSun"`
	AirAndPollen []AirAndPollen `json:"AirAndPollen"`
	Day          *HalfDay       `json:"Day"`
	Night        *HalfDay       `json:"Night"`
}

type DailyForecastResponse struct {
	Headline struct {
		Text string `json:"Text"`
	} `json:"Headline"`
	DailyForecasts []DailyForecast `json:"DailyForecasts"`
}

type HourlyForecast struct {
	EpochDateTime            int64    `json:"EpochDateTime"`
	WeatherIcon              *int     `json:"WeatherIcon"`
	IconPhrase               string   `json:"IconPhrase"`
	IsDaylight               *bool    `json:"IsDaylight"`
	Temperature              *Value   `json:"Temperature"`
	RealFeelTemperature      *Value   `json:"RealFeelTemperature"`
	RealFeelTemperatureShade *Value   `json:"RealFeelTemperatureShade"`
	WetBulbTemperature       *Value   `json:"WetBulbTemperature"`
	DewPoint                 *Value   `json:"DewPoint"`
	Wind                     *Wind    `json:"Wind"`
	WindGust                 *Wind    `json:"WindGust"`
	RelativeHumidity         *float64 `json:"RelativeHumidity"`
	Visibility               *Value   `json:"Visibility"`
	UVIndex                  *float64 `json:"UVIndex"`
	PrecipitationProbability *float64 `json:"PrecipitationProbability"`
	ThunderstormProbability  *float64 `json:"ThunderstormProbability"`
	RainProbability          *float64 `json:"RainProbability"`
	SnowProbability          *float64 `json:"SnowProbability"`
	IceProbability           *float64 `json:"IceProbability"`
	TotalLiquid              *Value   `json:"TotalLiquid"`
	Rain                     *Value   `json:"Rain"`
	Snow                     *Value   `json:"Snow"`
	Ice                      *Value   `json:"Ice"`
	CloudCover               *float64 `json:"CloudCover"`
}

// MinuteCastResponse reports radar reflectivity per interval.
type MinuteCastResponse struct {
	Summary struct {
		Phrase string `json:"Phrase"`
	} `json:"Summary"`
	Intervals []struct {
		StartEpochDateTime int64    `json:"StartEpochDateTime"`
		Minute             int      `json:"Minute"`
		Dbz                *float64 `json:"Dbz"`
	} `json:"Intervals"`
}

type AlertResponse struct {
	AlertID     int64 `json:"AlertID"`
	Description struct {
		Localized string `json:"Localized"`
	} `json:"Description"`
	Category string `json:"Category"`
	Priority int    `json:"Priority"`
	Level    string `json:"Level"`
	Source   string `json:"Source"`
	Area     []struct {
		Name           string `json:"Name"`
		EpochStartTime int64  `json:"EpochStartTime"`
		EpochEndTime   int64  `json:"EpochEndTime"`
		Summary        string `json:"Summary"`
		Text           string `json:"Text"`
	} `json:"Area"`
}

// Pollutant concentrations are µg/m³.
type Pollutant struct {
	Type          string `json:"Type"`
	Concentration Value  `json:"Concentration"`
}

type AirQualityResponse struct {
	Data []struct {
		EpochDate  int64       `json:"EpochDate"`
		Pollutants []Pollutant `json:"Pollutants"`
	} `json:"Data"`
}

type ClimoResponse struct {
	Normals *struct {
		Temperatures struct {
			Maximum *Measure `json:"Maximum"`
			Minimum *Measure `json:"Minimum"`
		} `json:"Temperatures"`
	} `json:"Normals"`
}
