/*
 * Copyright 2025 tomoncle.
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

package repository

import (
	"context"
	"sync"
)

// IdentityMap is a first-level cache of loaded entities for one table.
// It is safe for concurrent use.
type IdentityMap[K comparable, V any] struct {
	table   string
	mu      sync.RWMutex
	entries map[K]V
}

var _ Invalidator = (*IdentityMap[any, any])(nil)

func NewIdentityMap[K comparable, V any](table string) *IdentityMap[K, V] {
	return &IdentityMap[K, V]{table: table, entries: make(map[K]V)}
}

func (m *IdentityMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *IdentityMap[K, V]) Put(key K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
}

func (m *IdentityMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *IdentityMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *IdentityMap[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[K]V)
}

// Invalidate clears the map when table is its table or empty.
func (m *IdentityMap[K, V]) Invalidate(_ context.Context, table string) {
	if table == "" || m.table == "" || table == m.table {
		m.Clear()
	}
}
