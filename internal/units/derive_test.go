package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/units"
)

func TestDewPoint(t *testing.T) {
	dp := units.DewPoint(units.Ptr(20.0), units.Ptr(50.0))
	require.NotNil(t, dp)
	assert.InDelta(t, 9.3, *dp, 0.2)

	assert.Nil(t, units.DewPoint(nil, units.Ptr(50.0)))
	assert.Nil(t, units.DewPoint(units.Ptr(20.0), units.Ptr(0.0)))
}

func TestRelativeHumidity_InverseOfDewPoint(t *testing.T) {
	temp := units.Ptr(25.0)
	dp := units.DewPoint(temp, units.Ptr(65.0))
	rh := units.RelativeHumidity(temp, dp)
	require.NotNil(t, rh)
	assert.InDelta(t, 65.0, *rh, 0.01)
}

func TestWindChill(t *testing.T) {
	wc := units.WindChill(units.Ptr(-10.0), units.Ptr(20.0/3.6))
	require.NotNil(t, wc)
	assert.InDelta(t, -17.9, *wc, 0.2)

	assert.Nil(t, units.WindChill(units.Ptr(15.0), units.Ptr(10.0)), "undefined above 10 °C")
	assert.Nil(t, units.WindChill(units.Ptr(0.0), units.Ptr(1.0)), "undefined in calm air")
}

func TestApparentTemperature(t *testing.T) {
	at := units.ApparentTemperature(units.Ptr(30.0), units.Ptr(70.0), units.Ptr(2.0))
	require.NotNil(t, at)
	assert.InDelta(t, 34.4, *at, 0.2)
	assert.Nil(t, units.ApparentTemperature(units.Ptr(30.0), nil, units.Ptr(2.0)))
}

func TestWetBulb(t *testing.T) {
	wb := units.WetBulb(units.Ptr(20.0), units.Ptr(50.0))
	require.NotNil(t, wb)
	assert.InDelta(t, 13.7, *wb, 0.2)
}

func TestBeaufort(t *testing.T) {
	assert.Equal(t, 0, units.Beaufort(0.1))
	assert.Equal(t, 4, units.Beaufort(6.0))
	assert.Equal(t, 12, units.Beaufort(40))
}

func TestRainRate(t *testing.T) {
	assert.Nil(t, units.RainRate(nil))
	assert.Equal(t, 0.0, *units.RainRate(units.Ptr(-5.0)))
	assert.InDelta(t, 1.0, *units.RainRate(units.Ptr(23.01)), 0.01)
	assert.InDelta(t, 10.0, *units.RainRate(units.Ptr(39.01)), 0.05)
}
