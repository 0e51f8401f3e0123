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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comcast/rpdusensors/common"
	"github.com/comcast/rpdusensors/exporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ScrapeHandler handles GET /scrape requests
func ScrapeHandler(s *exporter.Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		ctx := r.Context()

		target, ok := targetParam(w, r)
		if !ok {
			return
		}

		log.Info("started scrape", zap.String("target", target), zap.Any("trace_id", ctx.Value("traceID")))

		registry := prometheus.NewRegistry()
		registry.MustRegister(exporter.NewExporter(ctx, target, s))

		// Delegate http serving to Prometheus client library, which will call collector.Collect.
		h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		h.ServeHTTP(w, r)
	}
}

// DiscoverHandler handles GET /discover requests, it lists the services
// the check would create for target
func DiscoverHandler(s *exporter.Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := targetParam(w, r)
		if !ok {
			return
		}

		section, err := s.Section(r.Context(), target)
		if err != nil {
			sectionError(w, r, target, err)
			return
		}

		writeJSON(w, r, s.Discover(section))
	}
}

// CheckHandler handles GET /check requests. The optional item parameter
// limits the check to one sensor.
func CheckHandler(s *exporter.Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := targetParam(w, r)
		if !ok {
			return
		}
		item := r.URL.Query().Get("item")

		section, err := s.Section(r.Context(), target)
		if err != nil {
			sectionError(w, r, target, err)
			return
		}

		results := s.Check(r.Context(), target, section, item)
		if item != "" && len(results) == 0 {
			http.Error(w, "item "+item+" not found on "+target, http.StatusNotFound)
			return
		}

		writeJSON(w, r, results)
	}
}

func targetParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := r.URL.Query()
	target := query.Get("target")
	if len(query["target"]) != 1 || target == "" {
		zap.L().Error("'target' parameter not set correctly", zap.String("target", target),
			zap.Any("trace_id", r.Context().Value("traceID")))
		http.Error(w, "'target' parameter not set correctly", http.StatusBadRequest)
		return "", false
	}
	return target, true
}

func sectionError(w http.ResponseWriter, r *http.Request, target string, err error) {
	zap.L().Error("unable to read sensors from "+target, zap.Error(err), zap.Any("trace_id", r.Context().Value("traceID")))

	switch {
	case errors.Is(err, exporter.ErrIgnored):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, common.ErrMissingCommunity):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("could not marshal response", zap.Error(err), zap.String("path", r.URL.Path))
	}
}
