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
	"strconv"
	"strings"

	"github.com/comcast/rpdusensors/temperature"
)

// StatusRow is one row of rPDU2SensorTempHumidityStatusTable
type StatusRow struct {
	Name        string
	Port        string
	TempF       string
	AlarmStatus string
}

// ConfigRow is one row of rPDU2SensorTempHumidityConfigTable
type ConfigRow struct {
	Name     string
	Location string
	Warn     string
	Crit     string
}

// SensorRecord is the joined state of a single sensor for one poll
type SensorRecord struct {
	TemperatureF float64     `json:"temperature_f"`
	StatusCode   AlarmStatus `json:"status_code"`
	// Warn and Crit are in the unit of Section.ThresholdUnit
	Warn *float64 `json:"warn,omitempty"`
	Crit *float64 `json:"crit,omitempty"`
}

// Section is the parsed result of one poll of a PDU
type Section struct {
	Sensors       map[string]SensorRecord `json:"sensors"`
	ThresholdUnit temperature.Unit        `json:"threshold_unit"`
}

type thresholds struct {
	warn *float64
	crit *float64
}

// Parse joins the status and config tables by sensor name. Sensors without a
// parseable temperature are dropped, sensors without a config row get no
// thresholds and config rows without a status row are ignored.
func Parse(status []StatusRow, config []ConfigRow) *Section {
	section := &Section{
		Sensors: make(map[string]SensorRecord, len(status)),
	}

	byName := make(map[string]thresholds, len(config))
	var pooled []float64
	for _, row := range config {
		t := thresholds{
			warn: parseFloat(row.Warn),
			crit: parseFloat(row.Crit),
		}
		byName[row.Name] = t

		if t.warn != nil {
			pooled = append(pooled, *t.warn)
		}
		if t.crit != nil {
			pooled = append(pooled, *t.crit)
		}
	}

	section.ThresholdUnit = DetectThresholdUnit(pooled)

	for _, row := range status {
		tempF := parseFloat(row.TempF)
		if tempF == nil {
			continue
		}

		code := AlarmDisconnected
		if c, err := strconv.Atoi(strings.TrimSpace(row.AlarmStatus)); err == nil {
			code = AlarmStatus(c)
		}

		t := byName[row.Name]
		section.Sensors[row.Name] = SensorRecord{
			TemperatureF: *tempF,
			StatusCode:   code,
			Warn:         t.warn,
			Crit:         t.crit,
		}
	}

	return section
}

// ParseTables converts the raw SNMP tables, in fetch order, into rows and
// parses them. Short rows are padded with empty cells.
func ParseTables(statusTable, configTable [][]string) *Section {
	status := make([]StatusRow, 0, len(statusTable))
	for _, r := range statusTable {
		r = pad(r, 4)
		status = append(status, StatusRow{Name: r[0], Port: r[1], TempF: r[2], AlarmStatus: r[3]})
	}

	config := make([]ConfigRow, 0, len(configTable))
	for _, r := range configTable {
		r = pad(r, 4)
		config = append(config, ConfigRow{Name: r[0], Location: r[1], Warn: r[2], Crit: r[3]})
	}

	return Parse(status, config)
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
