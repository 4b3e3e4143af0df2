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

package server

import (
	"sync"
	"time"

	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/tables"
)

// entry is one browser's session. Handlers hold mu while touching sess.
type entry struct {
	mu       sync.Mutex
	sess     *session.Session
	version  uint64
	lastUsed time.Time
}

// sync brings the session up to the shared snapshot version. Callers hold e.mu.
func (e *entry) sync(snap *tables.Snapshot, version uint64) {
	if e.version == version {
		return
	}
	e.sess.Update(snap)
	e.version = version
}

// registry maps cookie ids to sessions.
type registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxIdle time.Duration
	now     func() time.Time
}

func newRegistry(maxIdle time.Duration) *registry {
	return &registry{
		entries: make(map[string]*entry),
		maxIdle: maxIdle,
		now:     time.Now,
	}
}

func (r *registry) get(id string) *entry {
	if id == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	e.lastUsed = r.now()
	return e
}

// add stores sess under id and drops sessions idle for longer than maxIdle.
func (r *registry) add(id string, sess *session.Session) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if r.maxIdle > 0 {
		for k, e := range r.entries {
			if now.Sub(e.lastUsed) > r.maxIdle {
				delete(r.entries, k)
			}
		}
	}
	e := &entry{sess: sess, lastUsed: now}
	r.entries[id] = e
	return e
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
