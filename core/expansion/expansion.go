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

// Package expansion records which groups of a drill-down summary are open.
//
// Level-1 groups are identified by their key. Level-2 groups are identified by
// the pair (level-1 key, level-2 key), stored as a PathKey so that keys which
// happen to contain the separator never collide. The "||"-joined form is only
// used at boundaries that need a single string.
package expansion

import (
	"sort"
	"strings"
)

// Separator joins the two halves of a level-2 key in its string form.
const Separator = "||"

// PathKey identifies a level-2 group within its level-1 parent.
type PathKey struct {
	Level1 string
	Level2 string
}

// String returns the canonical boundary form level1 + "||" + level2.
func (p PathKey) String() string {
	return p.Level1 + Separator + p.Level2
}

// ParsePathKey splits s at the first separator. A key whose level-1 half
// contains "||" cannot be recovered from its string form; callers that can
// should pass the halves separately.
func ParsePathKey(s string) (PathKey, bool) {
	l1, l2, ok := strings.Cut(s, Separator)
	if !ok {
		return PathKey{}, false
	}
	return PathKey{Level1: l1, Level2: l2}, true
}

// State holds the open level-1 keys and the open level-2 paths.
// Entries for groups that no longer exist are kept and simply never match.
type State struct {
	level1 map[string]struct{}
	level2 map[PathKey]struct{}
}

// New creates a state with nothing open.
func New() *State {
	return &State{
		level1: make(map[string]struct{}),
		level2: make(map[PathKey]struct{}),
	}
}

// ToggleLevel1 opens a closed level-1 group or closes an open one.
// It returns the new open state.
func (s *State) ToggleLevel1(key string) bool {
	if _, ok := s.level1[key]; ok {
		delete(s.level1, key)
		return false
	}
	s.level1[key] = struct{}{}
	return true
}

// IsOpenLevel1 reports whether the level-1 group is open.
func (s *State) IsOpenLevel1(key string) bool {
	_, ok := s.level1[key]
	return ok
}

// ToggleLevel2 opens or closes a level-2 group and returns the new open state.
func (s *State) ToggleLevel2(path PathKey) bool {
	if _, ok := s.level2[path]; ok {
		delete(s.level2, path)
		return false
	}
	s.level2[path] = struct{}{}
	return true
}

// IsOpenLevel2 reports whether the level-2 group is open.
func (s *State) IsOpenLevel2(path PathKey) bool {
	_, ok := s.level2[path]
	return ok
}

// OpenLevel1 returns the open level-1 keys, sorted.
func (s *State) OpenLevel1() []string {
	keys := make([]string, 0, len(s.level1))
	for k := range s.level1 {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OpenLevel2 returns the open level-2 paths, sorted by level-1 then level-2 key.
func (s *State) OpenLevel2() []PathKey {
	paths := make([]PathKey, 0, len(s.level2))
	for p := range s.level2 {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Level1 != paths[j].Level1 {
			return paths[i].Level1 < paths[j].Level1
		}
		return paths[i].Level2 < paths[j].Level2
	})
	return paths
}
