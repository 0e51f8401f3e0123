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

package logger

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_InitializeFile(t *testing.T) {
	dir := t.TempDir()

	err := Initialize("rpdusensors", "testhost", LoggerConfig{
		LogLevel:  "debug",
		LogMethod: "file",
		LogFile:   LogFile{Path: dir, MaxSize: 1, MaxBackups: 1, MaxAge: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", GetLevel())

	zap.L().Info("sensor checked", zap.String("sensor", "Sensor1"))
	Flush()

	b, err := os.ReadFile(filepath.Join(dir, "rpdusensors.log"))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(b, &line))
	assert.Equal(t, "sensor checked", line["msg"])
	assert.Equal(t, "rpdusensors", line["app"])
	assert.Equal(t, "testhost", line["host"])
	assert.Equal(t, "Sensor1", line["sensor"])
}

func Test_InitializeErrors(t *testing.T) {
	assert.Error(t, Initialize("svc", "h", LoggerConfig{LogMethod: "syslog"}))
	assert.Error(t, Initialize("svc", "h", LoggerConfig{LogMethod: "file"}))
	assert.Error(t, Initialize("svc", "h", LoggerConfig{LogMethod: "vector", VectorEndpoint: "not a url"}))
	assert.NoError(t, Initialize("svc", "h", LoggerConfig{}))
}

func Test_VectorSink(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	sink := newVectorSink(u)
	n, err := sink.Write([]byte(`{"msg":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"msg":"hello"}`}, bodies)
}

func Test_VectorSinkRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	_, err := newVectorSink(u).Write([]byte(`{}`))
	assert.Error(t, err)
}

func Test_Verbosity(t *testing.T) {
	SetLevel("info")

	rec := httptest.NewRecorder()
	SetVerbosity(rec, httptest.NewRequest(http.MethodPut, "/verbosity?v=warn", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "warn", GetLevel())

	rec = httptest.NewRecorder()
	Verbosity(rec, httptest.NewRequest(http.MethodGet, "/verbosity", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verbosity":"warn"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	SetVerbosity(rec, httptest.NewRequest(http.MethodPut, "/verbosity", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown levels fall back to info
	SetLevel("chatty")
	assert.Equal(t, "info", GetLevel())
}
