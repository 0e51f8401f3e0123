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

package config

import (
	"sync"
	"time"
)

const (
	DefaultSNMPVersion = "2c"
	DefaultSNMPPort    = 161
	DefaultSNMPTimeout = 5 * time.Second
)

// Config holds the SNMP transport settings shared by every scrape
type Config struct {
	SNMPVersion        string
	SNMPPort           uint16
	SNMPTimeout        time.Duration
	SNMPRetries        int
	SNMPMaxRepetitions uint32
	Community          string
	SSLVerify          bool
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{
				SNMPVersion: DefaultSNMPVersion,
				SNMPPort:    DefaultSNMPPort,
				SNMPTimeout: DefaultSNMPTimeout,
			}
		}
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}
