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

// Package cli is the drilldown command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/logging"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/datasources"
	"github.com/google/drilldown/demo"
)

// Version is set at build time.
var Version = "0.1.0"

type configKey struct{}

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "drilldown",
		Short: "Interactive three-level drill-down summaries",
		Long: `drilldown groups a table by up to three dimensions and sums a measure
per group. Level 1 groups can be expanded into level 2, and level 2 into
level 3. Summaries are served as a web page, rendered to the terminal, or
explored in an interactive terminal UI.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Source.Type == config.SourceDemo && cfg.View.Assignment() == (selection.Assignment{}) {
				a := demo.DefaultAssignment()
				cfg.View.Level1, cfg.View.Level2, cfg.View.Level3 = a[0], a[1], a[2]
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				log.Debug().Str("file", cfg.File).Msg("using config file")
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			cmd.SetContext(log.WithContext(ctx))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("drilldown {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+" if present)")
	pf.String("source-type", "", "source type (demo|csv|yaml|json|xlsx|sqlite|duckdb|postgres)")
	pf.String("source-path", "", "source file path")
	pf.String("source-dsn", "", "database connection string")
	pf.String("source-query", "", "query returning the snapshot rows")
	pf.String("source-sheet", "", "xlsx sheet name (default: first sheet)")
	pf.String("source-measure", "", "measure column name, overrides the source's flag")
	pf.String("source-delimiter", ",", "csv field delimiter")
	pf.Bool("source-has-header", true, "csv/xlsx first row names the columns")
	pf.String("view-level1", "", "dimension for level 1")
	pf.String("view-level2", "", "dimension for level 2")
	pf.String("view-level3", "", "dimension for level 3")
	pf.String("search", "", "initial search text")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("log-format", "", "log format (console|json)")

	_ = root.RegisterFlagCompletionFunc("source-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return datasources.NewDefaultManager().SourceTypes(), cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		NewServeCommand(),
		NewRenderCommand(),
		NewTUICommand(),
		NewDimensionsCommand(),
		NewVersionCommand(Version),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// GetConfig returns the configuration loaded for the running command.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{Source: config.Source{Type: config.SourceDemo}}
}

func newManager(cfg *config.Config, log zerolog.Logger) *datasources.Manager {
	m := datasources.NewDefaultManager()
	m.SetLogger(log)
	if cfg.File != "" {
		m.SetBaseDir(filepath.Dir(cfg.File))
	}
	return m
}

// loadSession reads the configured source into a new session.
func loadSession(ctx context.Context, cfg *config.Config, m *datasources.Manager, log zerolog.Logger) (*session.Session, error) {
	snap, err := m.Load(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	sess := session.New(
		session.WithLogger(log),
		session.WithAssignment(cfg.View.Assignment()),
		session.WithSearch(cfg.View.Search),
	)
	sess.Update(snap)
	return sess, nil
}
