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
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newSensorMetric(metricName string, docString string, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricName,
			Help: docString,
		},
		labelNames,
	)
}

func NewDeviceMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newSensorMetric("up", "was the last scrape of the rack pdu successful.", []string{}),
		}

		SensorMetrics = &metrics{
			"temperature": newSensorMetric("apc_sensor_temperature", "Current sensor temperature in the configured unit", []string{"sensor", "unit"}),
			"warn":        newSensorMetric("apc_sensor_temperature_warn", "Warning level in effect for the sensor", []string{"sensor", "unit"}),
			"crit":        newSensorMetric("apc_sensor_temperature_crit", "Critical level in effect for the sensor", []string{"sensor", "unit"}),
			"alarmStatus": newSensorMetric("apc_sensor_alarm_status", "Device alarm status 1 = disconnected, 2 = normal, 3 = warning, 4 = critical", []string{"sensor"}),
			"checkState":  newSensorMetric("apc_sensor_check_state", "Check state 0 = OK, 1 = WARN, 2 = CRIT, 3 = UNKNOWN", []string{"sensor"}),
		}

		DeviceMetrics = &metrics{
			"thresholdUnit": newSensorMetric("apc_sensor_threshold_unit_info", "Unit the device thresholds were detected in", []string{"unit"}),
		}

		Metrics = &map[string]*metrics{
			"up":            UpMetric,
			"sensorMetrics": SensorMetrics,
			"deviceMetrics": DeviceMetrics,
		}
	)

	return Metrics
}
