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
	"context"
	"errors"
	"sync"

	"github.com/comcast/rpdusensors/config"
	"go.uber.org/zap"
)

var (
	ErrMissingCommunity = errors.New("no snmp community configured for target")

	// Communities caches the community string of every target seen so far
	Communities = NewCommunityCache()
)

// CommunitySource looks a community up in a secret store
type CommunitySource interface {
	Community(ctx context.Context, target string) (string, error)
}

type CommunityCache struct {
	mu     sync.Mutex
	cache  map[string]string
	Source CommunitySource
}

func NewCommunityCache() *CommunityCache {
	return &CommunityCache{cache: make(map[string]string)}
}

func (c *CommunityCache) Get(target string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.cache[target]
	return val, ok
}

func (c *CommunityCache) Set(target, community string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[target] = community
}

// Forget drops a cached community, the next lookup goes back to the source
func (c *CommunityCache) Forget(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, target)
}

// Lookup resolves the community for target from the cache, then the
// secret source, then the statically configured community.
func (c *CommunityCache) Lookup(ctx context.Context, target string) (string, error) {
	if community, ok := c.Get(target); ok {
		return community, nil
	}

	log := zap.L()

	if c.Source != nil {
		community, err := c.Source.Community(ctx, target)
		if err == nil {
			c.Set(target, community)
			return community, nil
		}
		log.Warn("issue retrieving snmp community from vault, using static community",
			zap.String("target", target), zap.Error(err), zap.Any("trace_id", ctx.Value("traceID")))
	}

	if community := config.GetConfig().Community; community != "" {
		return community, nil
	}

	return "", ErrMissingCommunity
}
