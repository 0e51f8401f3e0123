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

// Package rules loads the check parameter rules that operators attach to
// targets and sensors.
//
//	ruleset: temperature
//	rules:
//	  - target: "^pdu-dc1-"
//	    item: "^Sensor1$"
//	    params:
//	      input_unit: fahrenheit
//	      levels: [86, 95]
//
// A rule with an empty target or item pattern matches everything.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"github.com/comcast/rpdusensors/temperature"
	"gopkg.in/yaml.v3"
)

type file struct {
	Ruleset string     `yaml:"ruleset"`
	Rules   []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	Target string         `yaml:"target"`
	Item   string         `yaml:"item"`
	Params map[string]any `yaml:"params"`
}

type rule struct {
	target *regexp.Regexp
	item   *regexp.Regexp
	params map[string]any
}

// Ruleset resolves the parameters a check runs with
type Ruleset struct {
	Name     string
	defaults temperature.Params
	rules    []rule
}

// New returns a ruleset without rules, every lookup yields defaults
func New(name string, defaults temperature.Params) *Ruleset {
	return &Ruleset{Name: name, defaults: defaults}
}

// Load reads a rules file. An empty path gives an empty ruleset.
func Load(path, name string, defaults temperature.Params) (*Ruleset, error) {
	if path == "" {
		return New(name, defaults), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read rules file %s - %w", path, err)
	}
	return Parse(b, name, defaults)
}

// Parse decodes a rules document and rejects one written for another ruleset
func Parse(b []byte, name string, defaults temperature.Params) (*Ruleset, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unable to parse rules - %w", err)
	}

	if f.Ruleset != name {
		return nil, fmt.Errorf("rules are for ruleset %q, expected %q", f.Ruleset, name)
	}

	rs := New(name, defaults)
	for i, r := range f.Rules {
		target, err := compile(r.Target)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid target pattern - %w", i, err)
		}
		item, err := compile(r.Item)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid item pattern - %w", i, err)
		}
		rs.rules = append(rs.rules, rule{target: target, item: item, params: r.Params})
	}
	return rs, nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

func matches(re *regexp.Regexp, s string) bool {
	return re == nil || re.MatchString(s)
}

// Params merges every rule matching target and item. The first rule to set
// a key wins; keys no rule sets come from the defaults.
func (rs *Ruleset) Params(target, item string) temperature.Params {
	out := temperature.Params{}
	if rs == nil {
		return out
	}
	for _, r := range rs.rules {
		if !matches(r.target, target) || !matches(r.item, item) {
			continue
		}
		for k, v := range r.params {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	for k, v := range rs.defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Len is the number of rules loaded
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}
