package units

import "math"

// DewPoint computes the dew point in °C from temperature (°C) and relative
// humidity (%) using the Magnus formula.
func DewPoint(temperature, humidity *float64) *float64 {
	if temperature == nil || humidity == nil || *humidity <= 0 {
		return nil
	}
	const a, b = 17.27, 237.7
	alpha := a**temperature/(b+*temperature) + math.Log(*humidity/100)
	v := b * alpha / (a - alpha)
	return &v
}

// RelativeHumidity computes relative humidity (%) from temperature and dew
// point, both in °C.
func RelativeHumidity(temperature, dewPoint *float64) *float64 {
	if temperature == nil || dewPoint == nil {
		return nil
	}
	const a, b = 17.27, 237.7
	rh := 100 * math.Exp(a**dewPoint/(b+*dewPoint)-a**temperature/(b+*temperature))
	if rh > 100 {
		rh = 100
	}
	return &rh
}

// ApparentTemperature computes the Australian Bureau of Meteorology apparent
// temperature from temperature (°C), relative humidity (%) and wind speed
// (m/s).
func ApparentTemperature(temperature, humidity, windSpeed *float64) *float64 {
	if temperature == nil || humidity == nil || windSpeed == nil {
		return nil
	}
	e := *humidity / 100 * 6.105 * math.Exp(17.27**temperature/(237.7+*temperature))
	v := *temperature + 0.33*e - 0.70**windSpeed - 4.00
	return &v
}

// WindChill computes the wind chill index in °C from temperature (°C) and
// wind speed (m/s). It is only defined for temperatures at or below 10 °C
// and wind above 4.8 km/h; outside that range it returns nil.
func WindChill(temperature, windSpeed *float64) *float64 {
	if temperature == nil || windSpeed == nil {
		return nil
	}
	kmh := *windSpeed * 3.6
	if *temperature > 10 || kmh <= 4.8 {
		return nil
	}
	p := math.Pow(kmh, 0.16)
	v := 13.12 + 0.6215**temperature - 11.37*p + 0.3965**temperature*p
	return &v
}

// WetBulb computes the wet-bulb temperature in °C from temperature (°C) and
// relative humidity (%) using the Stull (2011) approximation.
func WetBulb(temperature, humidity *float64) *float64 {
	if temperature == nil || humidity == nil {
		return nil
	}
	t, rh := *temperature, *humidity
	v := t*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(t+rh) - math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) - 4.686035
	return &v
}

var beaufortLimits = []float64{0.3, 1.6, 3.4, 5.5, 8.0, 10.8, 13.9, 17.2, 20.8, 24.5, 28.5, 32.7}

// Beaufort returns the Beaufort force for a wind speed in m/s.
func Beaufort(windSpeed float64) int {
	for i, limit := range beaufortLimits {
		if windSpeed < limit {
			return i
		}
	}
	return 12
}

// RainRate computes rain intensity (mm/h) from radar reflectivity (dBZ)
// with the Marshall-Palmer relation Z = 200 R^1.6. Reflectivity at or below
// zero is no rain.
func RainRate(dbz *float64) *float64 {
	if dbz == nil {
		return nil
	}
	if *dbz <= 0 {
		v := 0.0
		return &v
	}
	z := math.Pow(10, *dbz/10)
	v := math.Pow(z/200, 1/1.6)
	return &v
}
