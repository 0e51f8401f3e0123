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
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by Get when the key has never been set
	ErrNotFound = errors.New("value not found")
)

// Store persists small values between check runs, i.e. the last reading
// used for temperature trend computation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Memory is a Store that lives only as long as the process
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

type scoped struct {
	Store
	prefix string
}

// Scoped returns a Store that namespaces every key under prefix. Closing
// the scoped store does not close the underlying one.
func Scoped(s Store, prefix string) Store {
	return &scoped{Store: s, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.Store.Get(ctx, s.prefix+"/"+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.Store.Set(ctx, s.prefix+"/"+key, value)
}

func (s *scoped) Close() error {
	return nil
}
