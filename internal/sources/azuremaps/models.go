package azuremaps

import "time"

// Value is a measurement tagged with its unit type code.
type Value struct {
	Value    *float64 `json:"value"`
	Unit     string   `json:"unit"`
	UnitType *int     `json:"unitType"`
}

type Range struct {
	Minimum *Value `json:"minimum"`
	Maximum *Value `json:"maximum"`
}

type Wind struct {
	Direction *struct {
		Degrees *float64 `json:"degrees"`
	} `json:"direction"`
	Speed *Value `json:"speed"`
}

type Current struct {
	DateTime                 time.Time `json:"dateTime"`
	Phrase                   string    `json:"phrase"`
	IconCode                 *int      `json:"iconCode"`
	IsDayTime                bool      `json:"isDayTime"`
	Temperature              *Value    `json:"temperature"`
	RealFeelTemperature      *Value    `json:"realFeelTemperature"`
	RealFeelTemperatureShade *Value    `json:"realFeelTemperatureShade"`
	ApparentTemperature      *Value    `json:"apparentTemperature"`
	WindChillTemperature     *Value    `json:"windChillTemperature"`
	WetBulbTemperature       *Value    `json:"wetBulbTemperature"`
	RelativeHumidity         *float64  `json:"relativeHumidity"`
	DewPoint                 *Value    `json:"dewPoint"`
	Wind                     *Wind     `json:"wind"`
	WindGust                 *Wind     `json:"windGust"`
	UVIndex                  *float64  `json:"uvIndex"`
	Visibility               *Value    `json:"visibility"`
	CloudCover               *float64  `json:"cloudCover"`
	Ceiling                  *Value    `json:"ceiling"`
	Pressure                 *Value    `json:"pressure"`
}

type CurrentResponse struct {
	Results []Current `json:"results"`
}

type HalfDay struct {
	IconCode                 *int     `json:"iconCode"`
	IconPhrase               string   `json:"iconPhrase"`
	LongPhrase               string   `json:"longPhrase"`
	PrecipitationProbability *float64 `json:"precipitationProbability"`
	ThunderstormProbability  *float64 `json:"thunderstormProbability"`
	RainProbability          *float64 `json:"rainProbability"`
	SnowProbability          *float64 `json:"snowProbability"`
	IceProbability           *float64 `json:"iceProbability"`
	Wind                     *Wind    `json:"wind"`
	WindGust                 *Wind    `json:"windGust"`
	TotalLiquid              *Value   `json:"totalLiquid"`
	Rain                     *Value   `json:"rain"`
	Snow                     *Value   `json:"snow"`
	Ice                      *Value   `json:"ice"`
	HoursOfPrecipitation     *float64 `json:"hoursOfPrecipitation"`
	HoursOfRain              *float64 `json:"hoursOfRain"`
	HoursOfSnow              *float64 `json:"hoursOfSnow"`
	HoursOfIce               *float64 `json:"hoursOfIce"`
	CloudCover               *float64 `json:"cloudCover"`
}

type Daily struct {
	Date                time.Time `json:"date"`
	Temperature         Range     `json:"temperature"`
	RealFeelTemperature Range     `json:"realFeelTemperature"`
	HoursOfSun          *float64  `json:"hoursOfSun"`
	DegreeDaySummary    struct {
		Heating *Value `json:"heating"`
		Cooling *Value `json:"cooling"`
	} `json:"degreeDaySummary"`
	Day   *HalfDay `json:"day"`
	Night *HalfDay `json:"night"`
}

type DailyResponse struct {
	Summary struct {
		Phrase string `json:"phrase"`
	} `json:"summary"`
	Forecasts []Daily `json:"forecasts"`
}

type Hourly struct {
	Date                     time.Time `json:"date"`
	IconCode                 *int      `json:"iconCode"`
	IconPhrase               string    `json:"iconPhrase"`
	IsDaylight               *bool     `json:"isDaylight"`
	Temperature              *Value    `json:"temperature"`
	RealFeelTemperature      *Value    `json:"realFeelTemperature"`
	WetBulbTemperature       *Value    `json:"wetBulbTemperature"`
	DewPoint                 *Value    `json:"dewPoint"`
	Wind                     *Wind     `json:"wind"`
	WindGust                 *Wind     `json:"windGust"`
	RelativeHumidity         *float64  `json:"relativeHumidity"`
	Visibility               *Value    `json:"visibility"`
	CloudCover               *float64  `json:"cloudCover"`
	UVIndex                  *float64  `json:"uvIndex"`
	PrecipitationProbability *float64  `json:"precipitationProbability"`
	RainProbability          *float64  `json:"rainProbability"`
	SnowProbability          *float64  `json:"snowProbability"`
	IceProbability           *float64  `json:"iceProbability"`
	TotalLiquid              *Value    `json:"totalLiquid"`
	Rain                     *Value    `json:"rain"`
	Snow                     *Value    `json:"snow"`
	Ice                      *Value    `json:"ice"`
}

type HourlyResponse struct {
	Forecasts []Hourly `json:"forecasts"`
}

type MinuteResponse struct {
	Intervals []struct {
		StartTime time.Time `json:"startTime"`
		Minute    int       `json:"minute"`
		Dbz       *float64  `json:"dbz"`
	} `json:"intervals"`
}

type AlertArea struct {
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Details   string    `json:"alertDetails"`
}

type Alert struct {
	AlertID     int64 `json:"alertId"`
	Description struct {
		Localized string `json:"localized"`
	} `json:"description"`
	Category string      `json:"category"`
	Priority int         `json:"priority"`
	Level    string      `json:"level"`
	Source   string      `json:"source"`
	Areas    []AlertArea `json:"alertAreas"`
}

type AlertsResponse struct {
	Results []Alert `json:"results"`
}

type Pollutant struct {
	Type          string `json:"type"`
	Concentration Value  `json:"concentration"`
}

type AirQualityResponse struct {
	Results []struct {
		DateTime   time.Time   `json:"dateTime"`
		Pollutants []Pollutant `json:"pollutants"`
	} `json:"results"`
}
