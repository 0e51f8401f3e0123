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

package muxprom

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	i := NewInstrumentation(reg)

	ok := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	bad := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "'target' parameter not set correctly", http.StatusBadRequest)
	}))
	silent := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://exporter/check?target=pdu1", nil))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://exporter/check?target=pdu1", nil))
	bad.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://exporter/check", nil))
	silent.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://exporter/info", nil))

	expected := `
        # HELP mux_router_requests_total The total number of requests received
        # TYPE mux_router_requests_total counter
        mux_router_requests_total{code="200",host="exporter",method="GET",route="/check",target="pdu1"} 2
        mux_router_requests_total{code="200",host="exporter",method="GET",route="/info",target=""} 1
        mux_router_requests_total{code="400",host="exporter",method="GET",route="/check",target=""} 1
	`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mux_router_requests_total"))
}

func Test_EstimateRequestSize(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/scrape", nil)
	r.Header = http.Header{"Accept": []string{"text/plain"}}
	r.ContentLength = 0

	// "GET" + "/scrape" + "HTTP/1.1" + 4 + "Accept" + "text/plain" + 2
	assert.Equal(t, int64(3+7+8+4+6+10+2), estimateRequestSize(r))
}
