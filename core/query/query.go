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

// Package query decodes summary interactions from URL parameters and builds
// the links that trigger them.
//
// Every interaction is an Action with an op and its arguments:
//
//	/action?op=assign&level=2&dim=Area
//	/action?op=clear
//	/action?op=search&q=pu
//	/action?op=toggle1&k1=Pune
//	/action?op=toggle2&k1=Pune&k2=Kothrud
//
// Level-2 toggles carry both keys separately so keys containing the display
// separator "||" stay unambiguous.
package query

import (
	"net/url"
	"strconv"

	"github.com/google/safehtml"
	"github.com/pkg/errors"

	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
)

// Op names an interaction.
type Op string

const (
	OpAssign  Op = "assign"
	OpClear   Op = "clear"
	OpSearch  Op = "search"
	OpToggle1 Op = "toggle1"
	OpToggle2 Op = "toggle2"
)

// IsToggle reports whether o opens or closes a group. Only toggles may be
// sent as plain links; every other op changes the view and is posted.
func (o Op) IsToggle() bool {
	return o == OpToggle1 || o == OpToggle2
}

// URL parameter names.
const (
	ParamOp        = "op"
	ParamLevel     = "level"
	ParamDimension = "dim"
	ParamSearch    = "q"
	ParamKey1      = "k1"
	ParamKey2      = "k2"
)

// Action is one user interaction.
type Action struct {
	Op        Op
	Level     selection.Level // assign
	Dimension string          // assign; "" unassigns
	Search    string          // search
	Key1      string          // toggle1, toggle2
	Key2      string          // toggle2
}

// Assign returns the action mapping level l to dim.
func Assign(l selection.Level, dim string) Action {
	return Action{Op: OpAssign, Level: l, Dimension: dim}
}

// Clear returns the action that unassigns every level.
func Clear() Action {
	return Action{Op: OpClear}
}

// Search returns the action setting the search text.
func Search(q string) Action {
	return Action{Op: OpSearch, Search: q}
}

// Toggle1 returns the action opening or closing a level-1 group.
func Toggle1(k1 string) Action {
	return Action{Op: OpToggle1, Key1: k1}
}

// Toggle2 returns the action opening or closing a level-2 group.
func Toggle2(path expansion.PathKey) Action {
	return Action{Op: OpToggle2, Key1: path.Level1, Key2: path.Level2}
}

// ParseAction decodes an action from URL parameters. Group keys may be empty
// but must be present.
func ParseAction(q url.Values) (Action, error) {
	a := Action{Op: Op(q.Get(ParamOp))}
	switch a.Op {
	case OpAssign:
		n, err := strconv.Atoi(q.Get(ParamLevel))
		if err != nil || !selection.Level(n).Valid() {
			return Action{}, errors.Errorf("invalid level %q", q.Get(ParamLevel))
		}
		a.Level = selection.Level(n)
		a.Dimension = q.Get(ParamDimension)
	case OpClear:
	case OpSearch:
		a.Search = q.Get(ParamSearch)
	case OpToggle1:
		if !q.Has(ParamKey1) {
			return Action{}, errors.New("toggle1 needs k1")
		}
		a.Key1 = q.Get(ParamKey1)
	case OpToggle2:
		if !q.Has(ParamKey1) || !q.Has(ParamKey2) {
			return Action{}, errors.New("toggle2 needs k1 and k2")
		}
		a.Key1 = q.Get(ParamKey1)
		a.Key2 = q.Get(ParamKey2)
	case "":
		return Action{}, errors.New("missing op")
	default:
		return Action{}, errors.Errorf("unknown op %q", a.Op)
	}
	return a, nil
}

// Apply performs the action on s.
func (a Action) Apply(s *session.Session) {
	switch a.Op {
	case OpAssign:
		s.Assign(a.Level, a.Dimension)
	case OpClear:
		s.ClearAssignment()
	case OpSearch:
		s.SetSearch(a.Search)
	case OpToggle1:
		s.ToggleLevel1(a.Key1)
	case OpToggle2:
		s.ToggleLevel2(expansion.PathKey{Level1: a.Key1, Level2: a.Key2})
	}
}

// Values encodes the action as URL parameters.
func (a Action) Values() url.Values {
	q := url.Values{}
	q.Set(ParamOp, string(a.Op))
	switch a.Op {
	case OpAssign:
		q.Set(ParamLevel, strconv.Itoa(int(a.Level)))
		q.Set(ParamDimension, a.Dimension)
	case OpSearch:
		q.Set(ParamSearch, a.Search)
	case OpToggle1:
		q.Set(ParamKey1, a.Key1)
	case OpToggle2:
		q.Set(ParamKey1, a.Key1)
		q.Set(ParamKey2, a.Key2)
	}
	return q
}

// ToURL returns the action as a link under path.
func (a Action) ToURL(path string) string {
	u := &url.URL{Path: path, RawQuery: a.Values().Encode()}
	return u.String()
}

// ToSafeURL converts the action link to a safehtml.URL.
func (a Action) ToSafeURL(path string) safehtml.URL {
	return safehtml.URLSanitized(a.ToURL(path))
}
