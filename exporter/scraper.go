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

package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/comcast/rpdusensors/apc"
	"github.com/comcast/rpdusensors/common"
	"github.com/comcast/rpdusensors/rules"
	"github.com/comcast/rpdusensors/snmp"
	"github.com/comcast/rpdusensors/temperature"
	"github.com/comcast/rpdusensors/valuestore"
	"go.uber.org/zap"
)

var (
	// ErrIgnored is returned for targets on the ignored list
	ErrIgnored = errors.New("target is on the ignored list")
)

// Device is an SNMP agent a scrape reads from
type Device interface {
	Detect(ctx context.Context, d snmp.Detect) error
	Tables(ctx context.Context, trees ...snmp.Tree) ([][][]string, error)
	Close() error
}

// Dialer opens a Device for target
type Dialer func(ctx context.Context, target, community string) (Device, error)

// SNMPDialer connects over UDP with gosnmp
func SNMPDialer(ctx context.Context, target, community string) (Device, error) {
	return snmp.NewClient(ctx, target, community)
}

// Scraper polls PDUs and runs the sensor check against them
type Scraper struct {
	Dial        Dialer
	Communities *common.CommunityCache
	Ignored     *common.IgnoredList
	Rules       *rules.Ruleset
	Store       valuestore.Store
	Evaluator   temperature.Evaluator
}

// DiscoveredService is a service the check creates for a sensor
type DiscoveredService struct {
	Item    string `json:"item"`
	Service string `json:"service"`
}

// ServiceResult is the outcome of one discovered service
type ServiceResult struct {
	Item    string               `json:"item"`
	Service string               `json:"service"`
	State   temperature.State    `json:"state"`
	Unit    temperature.Unit     `json:"unit"`
	Results []temperature.Result `json:"results"`
}

// Section detects the device behind target and reads both sensor tables.
// Targets failing detection are put on the ignored list.
func (s *Scraper) Section(ctx context.Context, target string) (*apc.Section, error) {
	log := zap.L()

	if s.Ignored.Contains(target) {
		return nil, ErrIgnored
	}

	community, err := s.Communities.Lookup(ctx, target)
	if err != nil {
		return nil, err
	}

	dev, err := s.Dial(ctx, target, community)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	if err = dev.Detect(ctx, apc.Plugin.Detect); err != nil {
		if errors.Is(err, snmp.ErrNotDetected) {
			s.Ignored.Add(target, err.Error())
			log.Info("added host "+target+" to ignored list", zap.Any("trace_id", ctx.Value("traceID")))
			return nil, ErrIgnored
		}
		return nil, err
	}

	tables, err := dev.Tables(ctx, apc.Plugin.StatusTree, apc.Plugin.ConfigTree)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sensor tables from %s - %w", target, err)
	}

	section := apc.ParseTables(tables[0], tables[1])
	log.Debug("parsed sensor section", zap.String("target", target), zap.Int("sensors", len(section.Sensors)),
		zap.String("threshold_unit", string(section.ThresholdUnit)), zap.Any("trace_id", ctx.Value("traceID")))

	return section, nil
}

// Discover lists the services of a section with their rendered names
func (s *Scraper) Discover(section *apc.Section) []DiscoveredService {
	out := []DiscoveredService{}
	for svc := range apc.Discover(section) {
		out = append(out, DiscoveredService{Item: svc.Item, Service: apc.Plugin.ServiceName(svc.Item)})
	}
	return out
}

// Check runs every discovered service of target, or only item when set.
// Trend state is kept per target in the value store.
func (s *Scraper) Check(ctx context.Context, target string, section *apc.Section, item string) []ServiceResult {
	store := s.Store
	if store != nil {
		store = valuestore.Scoped(store, target)
	}

	out := []ServiceResult{}
	for svc := range apc.Discover(section) {
		if item != "" && svc.Item != item {
			continue
		}
		params := s.Rules.Params(target, svc.Item)
		results := apc.Check(ctx, svc.Item, params, section, store, s.Evaluator)

		states := make([]temperature.State, 0, len(results))
		for _, r := range results {
			states = append(states, r.State)
		}

		out = append(out, ServiceResult{
			Item:    svc.Item,
			Service: apc.Plugin.ServiceName(svc.Item),
			State:   temperature.Worst(states...),
			Unit:    displayUnit(params),
			Results: results,
		})
	}
	return out
}

func displayUnit(params temperature.Params) temperature.Unit {
	if apc.TargetUnit(params) == temperature.Fahrenheit {
		return temperature.Fahrenheit
	}
	return temperature.Celsius
}
