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
	"testing"

	"github.com/comcast/rpdusensors/temperature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	assert := assert.New(t)

	section := Parse(
		[]StatusRow{
			{Name: "Sensor1", Port: "P1", TempF: "75.0", AlarmStatus: "3"},
			{Name: "B", Port: "P2", TempF: "68", AlarmStatus: "2"},
			{Name: "Broken", Port: "P3", TempF: "n/a", AlarmStatus: "2"},
			{Name: "NoStatus", Port: "P4", TempF: " 70.5 ", AlarmStatus: ""},
			{Name: "BadStatus", Port: "P5", TempF: "70", AlarmStatus: "x"},
		},
		[]ConfigRow{
			{Name: "Sensor1", Location: "Loc1", Warn: "70", Crit: "80"},
			{Name: "A", Location: "Loc2", Warn: "72", Crit: "85"},
			{Name: "NoStatus", Location: "Loc3", Warn: "", Crit: "bogus"},
		},
	)

	require.NotNil(t, section)
	assert.Equal(temperature.Fahrenheit, section.ThresholdUnit)
	assert.Len(section.Sensors, 4)

	s1 := section.Sensors["Sensor1"]
	assert.Equal(75.0, s1.TemperatureF)
	assert.Equal(AlarmWarning, s1.StatusCode)
	assert.Equal(70.0, *s1.Warn)
	assert.Equal(80.0, *s1.Crit)

	// config without status yields no record
	assert.NotContains(section.Sensors, "A")

	// status without config yields no thresholds
	b := section.Sensors["B"]
	assert.Nil(b.Warn)
	assert.Nil(b.Crit)
	assert.Equal(AlarmNormal, b.StatusCode)

	// unparseable temperature drops the sensor
	assert.NotContains(section.Sensors, "Broken")

	// unparseable thresholds become nil one field at a time
	ns := section.Sensors["NoStatus"]
	assert.Equal(70.5, ns.TemperatureF)
	assert.Equal(AlarmDisconnected, ns.StatusCode)
	assert.Nil(ns.Warn)
	assert.Nil(ns.Crit)

	assert.Equal(AlarmDisconnected, section.Sensors["BadStatus"].StatusCode)
}

func Test_ParsePartialThresholds(t *testing.T) {
	section := Parse(
		[]StatusRow{{Name: "S", TempF: "70", AlarmStatus: "2"}},
		[]ConfigRow{{Name: "S", Warn: "25", Crit: "oops"}},
	)

	s := section.Sensors["S"]
	require.NotNil(t, s.Warn)
	assert.Equal(t, 25.0, *s.Warn)
	assert.Nil(t, s.Crit)
	assert.Equal(t, temperature.Celsius, section.ThresholdUnit)
}

func Test_ParseEmpty(t *testing.T) {
	section := Parse(nil, nil)
	assert.Empty(t, section.Sensors)
	assert.Equal(t, temperature.Celsius, section.ThresholdUnit)
}

func Test_ParseTables(t *testing.T) {
	section := ParseTables(
		[][]string{
			{"Sensor1", "P1", "75.0", "3"},
			{"Short", "P2", "71"},
		},
		[][]string{
			{"Sensor1", "Loc1", "24", "27"},
		},
	)

	assert.Equal(t, temperature.Celsius, section.ThresholdUnit)
	assert.Len(t, section.Sensors, 2)
	assert.Equal(t, AlarmDisconnected, section.Sensors["Short"].StatusCode)
	assert.Equal(t, 24.0, *section.Sensors["Sensor1"].Warn)
}
