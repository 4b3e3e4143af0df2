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

package aggregates

import (
	"math"
	"strconv"
)

// FormatCompact renders a total the way summary rows show it: millions and
// thousands are abbreviated to one decimal ("1.5M", "2.3K"), smaller values are
// printed in full.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e6:
		return strconv.FormatFloat(roundHalfUp(v/1e6, 1), 'f', 1, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(roundHalfUp(v/1e3, 1), 'f', 1, 64) + "K"
	default:
		return formatNumber(v)
	}
}

// FormatPercent renders a percentage with one decimal, e.g. "50.0%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(roundHalfUp(p, 1), 'f', 1, 64) + "%"
}

// roundHalfUp rounds v to the given number of decimals, halves rounding up.
func roundHalfUp(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}

// formatNumber prints v without exponent or trailing zeros.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
