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

package apc

import (
	"fmt"

	"github.com/comcast/rpdusensors/snmp"
	"github.com/comcast/rpdusensors/temperature"
)

// CheckPlugin describes how a check is registered with the monitoring host
type CheckPlugin struct {
	Name              string
	ServiceNameFormat string
	DefaultParameters temperature.Params
	Ruleset           string
	Detect            snmp.Detect
	StatusTree        snmp.Tree
	ConfigTree        snmp.Tree
}

// ServiceName renders the service name of a discovered item
func (p CheckPlugin) ServiceName(item string) string {
	return fmt.Sprintf(p.ServiceNameFormat, item)
}

// Plugin is the APC Rack PDU temperature sensor check
var Plugin = CheckPlugin{
	Name:              "apc_rackpdu_sensor_temp_v2",
	ServiceNameFormat: "%s Temperature",
	DefaultParameters: temperature.Params{},
	Ruleset:           "temperature",
	Detect: snmp.Detect{
		SysDescrContains: "APC Web/SNMP",
		// rPDU2SensorTempHumidityStatusName
		Exists: ".1.3.6.1.4.1.318.1.1.25.1.2.1.3",
	},
	// rPDU2SensorTempHumidityStatusTable: name, comm status, TempF, alarm status
	StatusTree: snmp.Tree{
		Base:    ".1.3.6.1.4.1.318.1.1.25.1.2.1",
		Columns: []string{"3", "4", "5", "10"},
	},
	// rPDU2SensorTempHumidityConfigTable: name, location, high threshold, max threshold
	ConfigTree: snmp.Tree{
		Base:    ".1.3.6.1.4.1.318.1.1.25.1.4.1",
		Columns: []string{"3", "4", "7", "8"},
	},
}
