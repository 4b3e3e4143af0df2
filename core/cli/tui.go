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
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/drilldown/core/tables"
	"github.com/google/drilldown/core/tui"
	"github.com/google/drilldown/datasources"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the summary in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			// Log lines would corrupt the screen.
			log := zerolog.Nop()

			m := newManager(cfg, log)
			sess, err := loadSession(ctx, cfg, m, log)
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.New(sess, cfg.Server.Title),
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if watch && datasources.WatchPath(m.Resolve(cfg.Source)) != "" {
				go func() {
					_ = m.Watch(ctx, cfg.Source, datasources.DefaultDebounce, func(snap *tables.Snapshot) {
						p.Send(tui.SnapshotMsg{Snapshot: snap})
					})
				}()
			}
			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the source when its file changes")
	return cmd
}
