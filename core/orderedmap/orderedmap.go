/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Drilldown Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package orderedmap provides a map that iterates in first-insertion order.
// Group order in a summary is observable, so grouping never relies on Go map order.
package orderedmap

// Map is a map that preserves the order in which keys were first inserted.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		values: make(map[K]V),
	}
}

// GetOrInsert returns the value for key, inserting create() first if the key is new.
func (m *Map[K, V]) GetOrInsert(key K, create func() V) V {
	if v, ok := m.values[key]; ok {
		return v
	}
	v := create()
	m.keys = append(m.keys, key)
	m.values[key] = v
	return v
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Range calls f for each entry in insertion order until f returns false.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}
