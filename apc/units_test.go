/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package apc

import (
	"math"
	"testing"

	"github.com/comcast/rpdusensors/temperature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 {
	return &f
}

func Test_Converters(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(FahrenheitToCelsius(nil))
	assert.Nil(CelsiusToFahrenheit(nil))

	assert.InDelta(0.0, *FahrenheitToCelsius(ptr(32)), 1e-9)
	assert.InDelta(100.0, *FahrenheitToCelsius(ptr(212)), 1e-9)
	assert.InDelta(37.7778, *FahrenheitToCelsius(ptr(100)), 1e-4)
	assert.InDelta(-40.0, *CelsiusToFahrenheit(ptr(-40)), 1e-9)
	assert.InDelta(98.6, *CelsiusToFahrenheit(ptr(37)), 1e-9)

	for _, f := range []float64{-273.15, -40, 0, 21.5, 37, 70, 1e6} {
		assert.InDelta(f, *FahrenheitToCelsius(CelsiusToFahrenheit(ptr(f))), 1e-9)
		assert.InDelta(f, *CelsiusToFahrenheit(FahrenheitToCelsius(ptr(f))), 1e-9)
	}
}

func Test_TargetUnit(t *testing.T) {
	tests := []struct {
		name   string
		params any
		want   temperature.Unit
	}{
		{"empty mapping", map[string]any{}, temperature.Celsius},
		{"nil", nil, temperature.Celsius},
		{"mixed case fahrenheit", map[string]any{"input_unit": "Fahrenheit"}, temperature.Fahrenheit},
		{"params type", temperature.Params{"input_unit": "CELSIUS"}, temperature.Celsius},
		{"non string option", map[string]any{"input_unit": 1}, temperature.Celsius},
		{"non mapping", []string{"fahrenheit"}, temperature.Celsius},
		{"string", "fahrenheit", temperature.Celsius},
		{"unrecognized unit passes through", map[string]any{"input_unit": "Kelvin"}, temperature.Unit("kelvin")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetUnit(tt.params))
		})
	}
}

func Test_DetectThresholdUnit(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []float64
		want       temperature.Unit
	}{
		{"empty", nil, temperature.Celsius},
		{"fahrenheit", []float64{70, 75, 80}, temperature.Fahrenheit},
		{"celsius", []float64{21, 24, 27}, temperature.Celsius},
		{"only zeros and negatives", []float64{0, -5, -80}, temperature.Celsius},
		{"negatives are excluded from the mean", []float64{-100, 60, 70}, temperature.Fahrenheit},
		{"exactly the boundary is celsius", []float64{40, 60}, temperature.Celsius},
		{"NaN is dropped", []float64{math.NaN(), 80}, temperature.Fahrenheit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectThresholdUnit(tt.thresholds))
		})
	}
}

func Test_Normalize(t *testing.T) {
	assert := assert.New(t)

	reading, warn, crit := Normalize(100, nil, nil, temperature.Celsius, temperature.Celsius)
	assert.InDelta(37.78, reading, 0.01)
	assert.Nil(warn)
	assert.Nil(crit)

	reading, warn, crit = Normalize(100, ptr(70), nil, temperature.Fahrenheit, temperature.Celsius)
	assert.InDelta(37.78, reading, 0.01)
	require.NotNil(t, warn)
	assert.InDelta(21.11, *warn, 0.01)
	assert.Nil(crit)

	reading, warn, crit = Normalize(75, ptr(24), ptr(27), temperature.Celsius, temperature.Fahrenheit)
	assert.Equal(75.0, reading)
	assert.InDelta(75.2, *warn, 1e-9)
	assert.InDelta(80.6, *crit, 1e-9)

	// same unit passes thresholds through untouched
	w, c := ptr(21.123456789), ptr(26.987654321)
	_, warn, crit = Normalize(75, w, c, temperature.Celsius, temperature.Celsius)
	assert.Same(w, warn)
	assert.Same(c, crit)
	_, warn, crit = Normalize(75, w, c, temperature.Fahrenheit, temperature.Fahrenheit)
	assert.Equal(math.Float64bits(21.123456789), math.Float64bits(*warn))
	assert.Equal(math.Float64bits(26.987654321), math.Float64bits(*crit))

	// an unknown target reports in celsius and leaves thresholds alone
	reading, warn, _ = Normalize(212, ptr(70), nil, temperature.Fahrenheit, temperature.Unit("kelvin"))
	assert.InDelta(100.0, reading, 1e-9)
	assert.Equal(70.0, *warn)
}
