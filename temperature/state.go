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

import "encoding/json"

// State is the monitoring state of a single check result
type State int

const (
	OK      State = 0
	WARN    State = 1
	CRIT    State = 2
	UNKNOWN State = 3
)

// severity orders states from least to most severe, UNKNOWN ranks
// between WARN and CRIT
var severity = map[State]int{
	OK:      0,
	WARN:    1,
	UNKNOWN: 2,
	CRIT:    3,
}

func (s State) String() string {
	switch s {
	case OK:
		return "OK"
	case WARN:
		return "WARN"
	case CRIT:
		return "CRIT"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "OK":
		*s = OK
	case "WARN":
		*s = WARN
	case "CRIT":
		*s = CRIT
	default:
		*s = UNKNOWN
	}
	return nil
}

// Worst returns the most severe of the given states
func Worst(states ...State) State {
	worst := OK
	for _, s := range states {
		if severity[s] > severity[worst] {
			worst = s
		}
	}
	return worst
}

// Best returns the least severe of the given states, OK if none are given
func Best(states ...State) State {
	if len(states) == 0 {
		return OK
	}
	best := states[0]
	for _, s := range states[1:] {
		if severity[s] < severity[best] {
			best = s
		}
	}
	return best
}
