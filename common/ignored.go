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

package common

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// IgnoredDevices holds the targets that failed device detection
	IgnoredDevices = NewIgnoredList()
)

type host struct {
	H string `json:"host"`
}

type IgnoredDevice struct {
	Name   string    `json:"name"`
	Reason string    `json:"reason"`
	Since  time.Time `json:"since"`
}

type IgnoredList struct {
	mu      sync.RWMutex
	devices map[string]IgnoredDevice
}

func NewIgnoredList() *IgnoredList {
	return &IgnoredList{devices: make(map[string]IgnoredDevice)}
}

// Add keeps the first time a target was ignored
func (l *IgnoredList) Add(name, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.devices[name]; ok {
		return
	}
	l.devices[name] = IgnoredDevice{Name: name, Reason: reason, Since: time.Now().UTC()}
}

func (l *IgnoredList) Contains(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.devices[name]
	return ok
}

func (l *IgnoredList) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.devices[name]
	delete(l.devices, name)
	return ok
}

// List returns the ignored devices sorted by name
func (l *IgnoredList) List() []IgnoredDevice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]IgnoredDevice, 0, len(l.devices))
	for _, name := range slices.Sorted(maps.Keys(l.devices)) {
		out = append(out, l.devices[name])
	}
	return out
}

// ListIgnored writes the ignored devices as JSON
func ListIgnored(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(IgnoredDevices.List()); err != nil {
		zap.L().Error("could not marshal ignored devices", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

// RemoveHost takes {"host": "<target>"} off the ignored list so the next
// request runs device detection again
func RemoveHost(w http.ResponseWriter, r *http.Request) {
	var h host

	log := zap.L()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("could not read request body", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = json.Unmarshal(body, &h); err != nil || h.H == "" {
		log.Error("could not unmarshal host struct", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, "expected body {\"host\": \"<target>\"}", http.StatusBadRequest)
		return
	}

	if !IgnoredDevices.Remove(h.H) {
		http.Error(w, "host "+h.H+" is not on the ignored list", http.StatusNotFound)
		return
	}

	log.Info("removed host from ignored list", zap.String("target", h.H))
	w.WriteHeader(http.StatusOK)
}
