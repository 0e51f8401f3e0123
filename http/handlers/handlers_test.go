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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comcast/rpdusensors/apc"
	"github.com/comcast/rpdusensors/common"
	"github.com/comcast/rpdusensors/exporter"
	"github.com/comcast/rpdusensors/rules"
	"github.com/comcast/rpdusensors/snmp"
	"github.com/comcast/rpdusensors/temperature"
	"github.com/comcast/rpdusensors/valuestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	detectErr error
}

func (f *fakeDevice) Detect(ctx context.Context, d snmp.Detect) error {
	return f.detectErr
}

func (f *fakeDevice) Tables(ctx context.Context, trees ...snmp.Tree) ([][][]string, error) {
	return [][][]string{
		{
			{"Sensor1", "2", "75.0", "3"},
			{"Sensor2", "2", "68", "2"},
		},
		{
			{"Sensor1", "Loc1", "70", "80"},
		},
	}, nil
}

func (f *fakeDevice) Close() error { return nil }

func newScraper(dev *fakeDevice, dialErr error) *exporter.Scraper {
	communities := common.NewCommunityCache()
	communities.Set("pdu1", "public")

	return &exporter.Scraper{
		Dial: func(ctx context.Context, target, community string) (exporter.Device, error) {
			if dialErr != nil {
				return nil, dialErr
			}
			return dev, nil
		},
		Communities: communities,
		Ignored:     common.NewIgnoredList(),
		Rules:       rules.New(apc.Plugin.Ruleset, apc.Plugin.DefaultParameters),
		Store:       valuestore.NewMemory(),
		Evaluator:   temperature.NewEngine(),
	}
}

func get(h http.HandlerFunc, url string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, url, nil))
	return rr
}

func Test_TargetRequired(t *testing.T) {
	s := newScraper(&fakeDevice{}, nil)
	for _, h := range []http.HandlerFunc{ScrapeHandler(s), DiscoverHandler(s), CheckHandler(s)} {
		assert.Equal(t, http.StatusBadRequest, get(h, "/x").Code)
		assert.Equal(t, http.StatusBadRequest, get(h, "/x?target=a&target=b").Code)
	}
}

func Test_DiscoverHandler(t *testing.T) {
	rr := get(DiscoverHandler(newScraper(&fakeDevice{}, nil)), "/discover?target=pdu1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `[
		{"item": "Sensor1", "service": "Sensor1 Temperature"},
		{"item": "Sensor2", "service": "Sensor2 Temperature"}
	]`, rr.Body.String())
}

func Test_CheckHandler(t *testing.T) {
	h := CheckHandler(newScraper(&fakeDevice{}, nil))

	rr := get(h, "/check?target=pdu1&item=Sensor1")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []exporter.ServiceResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sensor1 Temperature", got[0].Service)
	assert.Contains(t, rr.Body.String(), `"state":"WARN"`)
	assert.Contains(t, rr.Body.String(), "23.9 °C (warn/crit at 21.1/26.7 °C) Sensor1: device status WARN")

	rr = get(h, "/check?target=pdu1")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	assert.Equal(t, http.StatusNotFound, get(h, "/check?target=pdu1&item=Sensor9").Code)
}

func Test_CheckHandlerErrors(t *testing.T) {
	s := newScraper(&fakeDevice{detectErr: snmp.ErrNotDetected}, nil)
	assert.Equal(t, http.StatusConflict, get(CheckHandler(s), "/check?target=pdu1").Code)
	assert.True(t, s.Ignored.Contains("pdu1"))

	s = newScraper(&fakeDevice{}, errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, get(DiscoverHandler(s), "/discover?target=pdu1").Code)

	assert.Equal(t, http.StatusUnauthorized, get(DiscoverHandler(s), "/discover?target=pdu2").Code)
}

func Test_ScrapeHandler(t *testing.T) {
	rr := get(ScrapeHandler(newScraper(&fakeDevice{}, nil)), "/scrape?target=pdu1")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "up 1")
	assert.Contains(t, body, `apc_sensor_alarm_status{sensor="Sensor1"} 3`)
	assert.Contains(t, body, `apc_sensor_temperature{sensor="Sensor2",unit="celsius"} 20`)
	assert.Contains(t, body, `apc_sensor_threshold_unit_info{unit="fahrenheit"} 1`)
}
