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

package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/drilldown/core/columns"
)

// NewDimensionsCommand creates the dimensions command.
func NewDimensionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dimensions",
		Short: "List the columns of the configured source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			log := *zerolog.Ctx(ctx)

			snap, err := newManager(cfg, log).Load(ctx, cfg.Source)
			if err != nil {
				return err
			}
			cols := snap.Columns()
			measure, fallback := columns.MeasureIndex(cols)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Column", "Display name", "Role"})
			for i, c := range cols {
				role := "dimension"
				if i == measure {
					role = "measure"
					if fallback {
						role = "measure (last column)"
					}
				}
				t.AppendRow(table.Row{i, c.Name(), c.DisplayName(), role})
			}
			t.AppendFooter(table.Row{"", "", "Rows", snap.Length()})
			t.Render()
			return nil
		},
	}
}
