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

package valuestore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Options selects and configures a Store backend
type Options struct {
	Backend       string // memory, bolt or redis
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open builds the backend named in opts. A redis backend must answer a
// PING before it is used.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "bolt":
		if opts.Path == "" {
			return nil, fmt.Errorf("bolt value store needs a file path")
		}
		return NewBolt(opts.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("unable to reach redis at %s - %w", opts.RedisAddr, err)
		}
		return NewRedis(client, opts.TTL), nil
	default:
		return nil, fmt.Errorf("unknown value store backend %q", opts.Backend)
	}
}
