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

package temperature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comcast/rpdusensors/valuestore"
	"go.uber.org/zap"
)

const (
	// device level handling modes of the temperature ruleset
	HandlingUsrDefault = "usrdefault"
	HandlingUsr        = "usr"
	HandlingDev        = "dev"
	HandlingDevDefault = "devdefault"
	HandlingBest       = "best"
	HandlingWorst      = "worst"

	defaultTrendPeriod = 30
)

// Params are the options of the temperature ruleset
type Params map[string]any

// Levels is a warn/crit pair, both in the unit of the reading
type Levels struct {
	Warn float64 `json:"warn"`
	Crit float64 `json:"crit"`
}

type Metric struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Levels *Levels `json:"levels,omitempty"`
}

// Result is a single line of check output
type Result struct {
	State   State   `json:"state"`
	Summary string  `json:"summary"`
	Metric  *Metric `json:"metric,omitempty"`
}

// Input carries everything a temperature check needs. Reading and
// DevLevels must already be expressed in the unit named by the
// input_unit parameter.
type Input struct {
	Reading       float64
	Params        any
	UniqueName    string
	Store         valuestore.Store
	DevLevels     *Levels
	DevStatus     State
	DevStatusName string
}

// Evaluator turns a normalized temperature reading into check results
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) []Result
}

// Engine is the default Evaluator
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

type trendPoint struct {
	Timestamp float64 `json:"ts"`
	Value     float64 `json:"value"`
}

func (e *Engine) Evaluate(ctx context.Context, in Input) []Result {
	params, _ := asMap(in.Params)
	unit := Celsius
	if u, ok := params["input_unit"].(string); ok && strings.ToLower(u) == string(Fahrenheit) {
		unit = Fahrenheit
	}

	usrUpper := levelsParam(params, "levels")
	usrLower := levelsParam(params, "levels_lower")
	usrConfigured := usrUpper != nil || usrLower != nil
	usrState := Worst(upperState(in.Reading, usrUpper), lowerState(in.Reading, usrLower))
	devState := Worst(upperState(in.Reading, in.DevLevels), in.DevStatus)

	handling, _ := params["device_levels_handling"].(string)

	var state State
	upper, lower := usrUpper, usrLower
	switch handling {
	case HandlingUsr:
		state = usrState
	case HandlingDev:
		state = devState
		upper, lower = in.DevLevels, nil
	case HandlingDevDefault:
		if in.DevLevels != nil {
			state = devState
			upper, lower = in.DevLevels, nil
		} else {
			state = Worst(usrState, in.DevStatus)
		}
	case HandlingBest:
		state = Best(usrState, devState)
	case HandlingWorst:
		state = Worst(usrState, devState)
	default:
		if usrConfigured {
			state = usrState
		} else {
			state = devState
			upper, lower = in.DevLevels, nil
		}
	}

	summary := []string{fmt.Sprintf("%.1f %s", in.Reading, unit.Symbol())}
	if upper != nil && in.Reading >= upper.Warn {
		summary = append(summary, fmt.Sprintf("(warn/crit at %.1f/%.1f %s)", upper.Warn, upper.Crit, unit.Symbol()))
	}
	if lower != nil && in.Reading < lower.Warn {
		summary = append(summary, fmt.Sprintf("(warn/crit below %.1f/%.1f %s)", lower.Warn, lower.Crit, unit.Symbol()))
	}
	if in.DevStatus != OK && in.DevStatusName != "" {
		summary = append(summary, fmt.Sprintf("%s: device status %s", in.DevStatusName, in.DevStatus))
	}

	results := []Result{{
		State:   state,
		Summary: strings.Join(summary, " "),
		Metric:  &Metric{Name: "temp", Value: in.Reading, Levels: upper},
	}}

	if trend, ok := params["trend_compute"]; ok && in.Store != nil {
		if r, ok := e.trend(ctx, in, trend, unit); ok {
			results = append(results, r)
		}
	}

	return results
}

// trend stores the current reading and reports the rate of change since the
// previous one, scaled to the configured period in minutes
func (e *Engine) trend(ctx context.Context, in Input, trendParams any, unit Unit) (Result, bool) {
	log := zap.L()
	key := in.UniqueName + ".trend"
	period := float64(defaultTrendPeriod)
	var trendLevels *Levels
	if tp, ok := asMap(trendParams); ok {
		if p, ok := toFloat(tp["period"]); ok && p > 0 {
			period = p
		}
		trendLevels = levelsParam(tp, "trend_levels")
	}

	now := e.now()
	cur := trendPoint{Timestamp: float64(now.UnixNano()) / 1e9, Value: in.Reading}

	var prev trendPoint
	var hasPrev bool
	b, err := in.Store.Get(ctx, key)
	if err != nil && !errors.Is(err, valuestore.ErrNotFound) {
		log.Error("unable to read trend value", zap.Error(err), zap.String("key", key))
		return Result{}, false
	}
	if err == nil {
		if err := json.Unmarshal(b, &prev); err == nil {
			hasPrev = true
		}
	}

	b, _ = json.Marshal(cur)
	if err := in.Store.Set(ctx, key, b); err != nil {
		log.Error("unable to store trend value", zap.Error(err), zap.String("key", key))
	}

	elapsed := cur.Timestamp - prev.Timestamp
	if !hasPrev || elapsed <= 0 {
		return Result{}, false
	}

	rate := (cur.Value - prev.Value) / elapsed * period * 60
	return Result{
		State:   upperState(rate, trendLevels),
		Summary: fmt.Sprintf("Temperature trend: %+.1f %s per %.0f min", rate, unit.Symbol(), period),
		Metric:  &Metric{Name: "temp_trend", Value: rate, Levels: trendLevels},
	}, true
}

func upperState(v float64, l *Levels) State {
	switch {
	case l == nil:
		return OK
	case v >= l.Crit:
		return CRIT
	case v >= l.Warn:
		return WARN
	}
	return OK
}

func lowerState(v float64, l *Levels) State {
	switch {
	case l == nil:
		return OK
	case v < l.Crit:
		return CRIT
	case v < l.Warn:
		return WARN
	}
	return OK
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Params:
		return m, true
	}
	return nil, false
}

// levelsParam reads a [warn, crit] pair, returning nil when the key is
// missing or malformed
func levelsParam(params map[string]any, key string) *Levels {
	var pair []any
	switch v := params[key].(type) {
	case []any:
		pair = v
	case []float64:
		for _, f := range v {
			pair = append(pair, f)
		}
	case Levels:
		return &v
	case *Levels:
		return v
	default:
		return nil
	}
	if len(pair) != 2 {
		return nil
	}
	warn, ok1 := toFloat(pair[0])
	crit, ok2 := toFloat(pair[1])
	if !ok1 || !ok2 {
		return nil
	}
	return &Levels{Warn: warn, Crit: crit}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
