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

package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_LoggingHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	var seen []string
	h := LoggingHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, TraceID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check?target=pdu1&item=Sensor1", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Len(t, seen[0], 32)
	assert.NotEqual(t, seen[0], seen[1])

	entries := logs.FilterMessage("finished handling").All()
	assert.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pdu1", fields["target"])
	assert.Equal(t, "Sensor1", fields["item"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, seen[0], fields["trace_id"])
}

func Test_TraceIDMissing(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
}
