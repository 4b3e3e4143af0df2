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
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/rendering"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/views"
)

// Render output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatHTML  = "html"
)

// RenderOptions holds the render command flags.
type RenderOptions struct {
	Format    string
	Expand    []string
	ExpandAll bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the summary once",
		Example: `  # Top level only
  drilldown render --view-level1 City

  # Open Pune and its Kothrud area
  drilldown render --expand Pune --expand "Pune||Kothrud"

  # Everything, as JSON
  drilldown render --expand-all --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatTable, "output format (table|json|html)")
	cmd.Flags().StringArrayVar(&opts.Expand, "expand", nil, `group to open: a level 1 key, or "key1||key2" for level 2`)
	cmd.Flags().BoolVar(&opts.ExpandAll, "expand-all", false, "open every expandable group")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatTable, FormatJSON, FormatHTML}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	log := *zerolog.Ctx(ctx)

	sess, err := loadSession(ctx, cfg, newManager(cfg, log), log)
	if err != nil {
		return err
	}
	for _, e := range opts.Expand {
		openGroup(sess, e)
	}
	if opts.ExpandAll {
		expandAll(sess)
	}

	return render(cmd.OutOrStdout(), sess, opts.Format, cfg.Server.Title)
}

// openGroup opens a level 1 key, or a level 2 path written as "key1||key2".
func openGroup(sess *session.Session, e string) {
	if p, ok := expansion.ParsePathKey(e); ok {
		if !sess.Expansion().IsOpenLevel2(p) {
			sess.ToggleLevel2(p)
		}
		return
	}
	if !sess.Expansion().IsOpenLevel1(e) {
		sess.ToggleLevel1(e)
	}
}

// expandAll opens every level 1 and level 2 group of the current result.
func expandAll(sess *session.Session) {
	for _, g := range sess.Result().Groups {
		if g.Expandable && !g.Expanded {
			sess.ToggleLevel1(g.Key)
		}
	}
	for _, g := range sess.Result().Groups {
		for _, c := range g.Children {
			if c.Expandable && !c.Expanded {
				sess.ToggleLevel2(c.Path)
			}
		}
	}
}

func render(w io.Writer, sess *session.Session, format, title string) error {
	switch format {
	case FormatTable:
		return rendering.RenderTable(w, views.BuildSummaryViewModel(sess, views.Options{Title: title}))
	case FormatJSON:
		return rendering.RenderJSON(w, sess)
	case FormatHTML:
		r, err := rendering.NewSummaryRenderer()
		if err != nil {
			return err
		}
		return r.Render(w, views.BuildSummaryViewModel(sess, views.Options{Title: title}))
	}
	return errors.Errorf("unknown format %q (want table, json or html)", format)
}
