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

package rendering

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/google/drilldown/core/views"
)

// RenderTable writes the summary as a terminal table. Nested groups are
// indented under their parent.
func RenderTable(w io.Writer, vm views.SummaryViewModel) error {
	if !vm.HasSnapshot {
		_, err := fmt.Fprintln(w, "(no data)")
		return err
	}
	if len(vm.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no groups: assign a dimension to level 1)")
		return err
	}

	levels := make([]string, 0, len(vm.Levels))
	for _, l := range vm.Levels {
		if l.Selected != "" {
			levels = append(levels, l.Selected)
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(vm.Title)
	t.AppendHeader(table.Row{strings.Join(levels, " › "), vm.Measure, "Share", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	for _, r := range vm.Rows {
		t.AppendRow(table.Row{strings.Repeat("  ", r.Level-1) + r.Key, r.Total, r.Percent, r.Arrow})
	}
	t.AppendFooter(table.Row{"Total", vm.GrandTotal, "", ""})
	t.Render()
	return nil
}
