package openweathermap

// OpenWeatherMap API response structures. Fields the API may omit are
// pointers.

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

type Volume struct {
	OneHour *float64 `json:"1h"`
}

type CurrentData struct {
	Dt         int64       `json:"dt"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
	Temp       *float64    `json:"temp"`
	FeelsLike  *float64    `json:"feels_like"`
	Pressure   *float64    `json:"pressure"`
	Humidity   *float64    `json:"humidity"`
	DewPoint   *float64    `json:"dew_point"`
	UVI        *float64    `json:"uvi"`
	Clouds     *float64    `json:"clouds"`
	Visibility *float64    `json:"visibility"`
	WindSpeed  *float64    `json:"wind_speed"`
	WindDeg    *float64    `json:"wind_deg"`
	WindGust   *float64    `json:"wind_gust"`
	Rain       *Volume     `json:"rain"`
	Snow       *Volume     `json:"snow"`
	Weather    []Condition `json:"weather"`
}

type MinutelyData struct {
	Dt            int64    `json:"dt"`
	Precipitation *float64 `json:"precipitation"`
}

type HourlyData struct {
	CurrentData
	Pop *float64 `json:"pop"`
}

type DailyTemp struct {
	Day   *float64 `json:"day"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Night *float64 `json:"night"`
	Eve   *float64 `json:"eve"`
	Morn  *float64 `json:"morn"`
}

type DailyData struct {
	Dt        int64       `json:"dt"`
	Sunrise   int64       `json:"sunrise"`
	Sunset    int64       `json:"sunset"`
	Summary   string      `json:"summary"`
	Temp      DailyTemp   `json:"temp"`
	FeelsLike DailyTemp   `json:"feels_like"`
	Pressure  *float64    `json:"pressure"`
	Humidity  *float64    `json:"humidity"`
	DewPoint  *float64    `json:"dew_point"`
	WindSpeed *float64    `json:"wind_speed"`
	WindDeg   *float64    `json:"wind_deg"`
	WindGust  *float64    `json:"wind_gust"`
	Clouds    *float64    `json:"clouds"`
	Pop       *float64    `json:"pop"`
	Rain      *float64    `json:"rain"`
	Snow      *float64    `json:"snow"`
	UVI       *float64    `json:"uvi"`
	Weather   []Condition `json:"weather"`
}

type AlertData struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type OneCallResponse struct {
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	Timezone       string         `json:"timezone"`
	TimezoneOffset int            `json:"timezone_offset"`
	Current        *CurrentData   `json:"current"`
	Minutely       []MinutelyData `json:"minutely"`
	Hourly         []HourlyData   `json:"hourly"`
	Daily          []DailyData    `json:"daily"`
	Alerts         []AlertData    `json:"alerts"`
}

type AirPollutionResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		// Components in µg/m³.
		Components struct {
			CO   *float64 `json:"co"`
			NO2  *float64 `json:"no2"`
			O3   *float64 `json:"o3"`
			SO2  *float64 `json:"so2"`
			PM25 *float64 `json:"pm2_5"`
			PM10 *float64 `json:"pm10"`
		} `json:"components"`
	} `json:"list"`
}
