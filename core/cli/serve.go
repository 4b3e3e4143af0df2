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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/drilldown/core/server"
	"github.com/google/drilldown/datasources"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the summary as a web page",
		Long: `Serve the drill-down summary over HTTP. Every browser gets its own
selection, expansion and search state. File sources are watched and open
pages reload when the file changes.`,
		Example: `  # Serve the demo dataset
  drilldown serve

  # Serve a CSV file on another address
  drilldown serve --source-type csv --source-path ftu.csv --addr :9000`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default: 127.0.0.1:8097)")
	cmd.Flags().Bool("watch", true, "reload the source when its file changes")
	cmd.Flags().String("server-title", "", "page title")
	cmd.Flags().String("server-session-secret", "", "cookie signing secret")
	cmd.Flags().Bool("server-secure-cookie", false, "mark the session cookie Secure (serving behind TLS)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	log := *zerolog.Ctx(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.NewServer(server.Config{
		Addr:          cfg.Server.Addr,
		Title:         cfg.Server.Title,
		SessionSecret: cfg.Server.SessionSecret,
		SecureCookie:  cfg.Server.SecureCookie,
		Watch:         cfg.Server.Watch,
		Debounce:      datasources.DefaultDebounce,
		Source:        cfg.Source,
		View:          cfg.View,
		Logger:        log,
		Manager:       newManager(cfg, log),
		Registry:      reg,
	})
	if err != nil {
		return err
	}
	if err := srv.Load(ctx); err != nil {
		return err
	}
	return srv.Serve(ctx)
}
