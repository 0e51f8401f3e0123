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
	"strings"

	"github.com/comcast/rpdusensors/temperature"
)

// fahrenheitBoundary is the mean threshold above which a batch of
// thresholds is assumed to be in Fahrenheit. Data center thresholds sit
// around 20-35 °C or 68-95 °F.
const fahrenheitBoundary = 50

// FahrenheitToCelsius converts f, a nil reading stays nil
func FahrenheitToCelsius(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := (*f - 32) * 5.0 / 9.0
	return &c
}

// CelsiusToFahrenheit converts c, a nil reading stays nil
func CelsiusToFahrenheit(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := (*c * 9.0 / 5.0) + 32
	return &f
}

// TargetUnit returns the unit results are reported in. It is the lower-cased
// input_unit option when params is a mapping holding a string there,
// celsius otherwise.
func TargetUnit(params any) temperature.Unit {
	var m map[string]any
	switch p := params.(type) {
	case map[string]any:
		m = p
	case temperature.Params:
		m = p
	default:
		return temperature.Celsius
	}

	if u, ok := m["input_unit"].(string); ok {
		return temperature.Unit(strings.ToLower(u))
	}
	return temperature.Celsius
}

// DetectThresholdUnit guesses the unit of a device's alarm thresholds from
// their magnitude. The NMC reports thresholds in the unit of its
// localization setting and nothing in the MIB says which one that is.
//
// This is a heuristic: the mean of all positive thresholds above 50 is
// taken to be Fahrenheit. A device configured with very high Celsius or
// very low Fahrenheit thresholds is misdetected.
func DetectThresholdUnit(thresholds []float64) temperature.Unit {
	var sum float64
	var n int
	for _, t := range thresholds {
		// NaN fails the comparison and is dropped with the non-positives
		if t > 0 {
			sum += t
			n++
		}
	}

	if n == 0 {
		return temperature.Celsius
	}

	if sum/float64(n) > fahrenheitBoundary {
		return temperature.Fahrenheit
	}
	return temperature.Celsius
}

// Normalize expresses the current reading, which the device always reports
// in Fahrenheit, and the warn/crit thresholds, which are in thresholdUnit,
// in targetUnit.
func Normalize(readingF float64, warn, crit *float64, thresholdUnit, targetUnit temperature.Unit) (float64, *float64, *float64) {
	reading := readingF
	if targetUnit != temperature.Fahrenheit {
		reading = *FahrenheitToCelsius(&readingF)
	}

	switch {
	case thresholdUnit == targetUnit:
		return reading, warn, crit
	case thresholdUnit == temperature.Celsius && targetUnit == temperature.Fahrenheit:
		return reading, CelsiusToFahrenheit(warn), CelsiusToFahrenheit(crit)
	case thresholdUnit == temperature.Fahrenheit && targetUnit == temperature.Celsius:
		return reading, FahrenheitToCelsius(warn), FahrenheitToCelsius(crit)
	}

	// unreachable with two valued units, keep the thresholds as they are
	return reading, warn, crit
}
