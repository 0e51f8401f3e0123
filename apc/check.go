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
	"context"
	"iter"
	"maps"
	"slices"

	"github.com/comcast/rpdusensors/temperature"
	"github.com/comcast/rpdusensors/valuestore"
)

// AlarmStatus is rPDU2SensorTempHumidityStatusAlarmStatus
type AlarmStatus int

const (
	AlarmDisconnected AlarmStatus = 1
	AlarmNormal       AlarmStatus = 2
	AlarmWarning      AlarmStatus = 3
	AlarmCritical     AlarmStatus = 4
)

var alarmStates = map[AlarmStatus]temperature.State{
	AlarmDisconnected: temperature.UNKNOWN,
	AlarmNormal:       temperature.OK,
	AlarmWarning:      temperature.WARN,
	AlarmCritical:     temperature.CRIT,
}

// State maps the device alarm status to a monitoring state, codes outside
// the MIB range are UNKNOWN
func (a AlarmStatus) State() temperature.State {
	if s, ok := alarmStates[a]; ok {
		return s
	}
	return temperature.UNKNOWN
}

// Service is a discovered check item
type Service struct {
	Item string `json:"item"`
}

// Discover yields one service per sensor in the section, ordered by name
func Discover(section *Section) iter.Seq[Service] {
	return func(yield func(Service) bool) {
		if section == nil {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(section.Sensors)) {
			if !yield(Service{Item: name}) {
				return
			}
		}
	}
}

// UniqueName is the key the evaluator uses to persist per sensor state
func UniqueName(item string) string {
	return Plugin.Name + "." + item
}

// Check evaluates a single sensor. It returns nil when item is not part of
// the section, which the caller reports as a vanished service.
func Check(ctx context.Context, item string, params any, section *Section, store valuestore.Store, eval temperature.Evaluator) []temperature.Result {
	if section == nil {
		return nil
	}
	rec, ok := section.Sensors[item]
	if !ok {
		return nil
	}

	thresholdUnit := section.ThresholdUnit
	if thresholdUnit == "" {
		thresholdUnit = temperature.Celsius
	}
	targetUnit := TargetUnit(params)

	reading, warn, crit := Normalize(rec.TemperatureF, rec.Warn, rec.Crit, thresholdUnit, targetUnit)

	var devLevels *temperature.Levels
	if warn != nil && crit != nil {
		devLevels = &temperature.Levels{Warn: *warn, Crit: *crit}
	}

	return eval.Evaluate(ctx, temperature.Input{
		Reading:       reading,
		Params:        params,
		UniqueName:    UniqueName(item),
		Store:         store,
		DevLevels:     devLevels,
		DevStatus:     rec.StatusCode.State(),
		DevStatusName: item,
	})
}
