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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// UP is reported after a successful scrape
	UP = 1.0
	// DOWN is reported when the device could not be read
	DOWN = 0.0
	// IGNORED is reported for targets on the ignored list
	IGNORED = 2.0
)

var (
	log *zap.Logger
)

// Exporter reads the temperature sensors of one rack PDU and exports them
// using the prometheus metrics package.
type Exporter struct {
	ctx           context.Context
	mutex         sync.Mutex
	target        string
	scraper       *Scraper
	deviceMetrics *map[string]*metrics
}

// NewExporter returns an initialized Exporter for target
func NewExporter(ctx context.Context, target string, scraper *Scraper) *Exporter {
	log = zap.L()

	return &Exporter{
		ctx:           ctx,
		target:        target,
		scraper:       scraper,
		deviceMetrics: NewDeviceMetrics(),
	}
}

// Describe describes all the metrics ever exported by the exporter. It
// implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect polls the PDU and delivers the sensor readings as Prometheus
// metrics. It implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // To protect metrics from concurrent collects.
	defer e.mutex.Unlock()

	e.resetMetrics()
	e.scrape()
	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

func (e *Exporter) setUp(v float64) {
	var upMetric = (*e.deviceMetrics)["up"]
	(*upMetric)["up"].WithLabelValues().Set(v)
}

func (e *Exporter) scrape() {
	section, err := e.scraper.Section(e.ctx, e.target)
	if err != nil {
		if errors.Is(err, ErrIgnored) {
			e.setUp(IGNORED)
			return
		}
		log.Error("error reading sensors from "+e.target, zap.Error(err), zap.Any("trace_id", e.ctx.Value("traceID")))
		e.setUp(DOWN)
		return
	}

	var (
		sensor = (*e.deviceMetrics)["sensorMetrics"]
		device = (*e.deviceMetrics)["deviceMetrics"]
	)

	(*device)["thresholdUnit"].WithLabelValues(string(section.ThresholdUnit)).Set(1)

	for _, svc := range e.scraper.Check(e.ctx, e.target, section, "") {
		rec := section.Sensors[svc.Item]
		(*sensor)["alarmStatus"].WithLabelValues(svc.Item).Set(float64(rec.StatusCode))
		(*sensor)["checkState"].WithLabelValues(svc.Item).Set(float64(svc.State))

		for _, r := range svc.Results {
			if r.Metric == nil || r.Metric.Name != "temp" {
				continue
			}
			unit := string(svc.Unit)
			(*sensor)["temperature"].WithLabelValues(svc.Item, unit).Set(r.Metric.Value)
			if r.Metric.Levels != nil {
				(*sensor)["warn"].WithLabelValues(svc.Item, unit).Set(r.Metric.Levels.Warn)
				(*sensor)["crit"].WithLabelValues(svc.Item, unit).Set(r.Metric.Levels.Crit)
			}
		}
	}

	e.setUp(UP)
}
