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

// Package rendering writes summaries as HTML pages, terminal tables and JSON.
package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"
	"github.com/pkg/errors"

	"github.com/google/drilldown/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// SummaryRenderer handles rendering of summary view models to HTML
type SummaryRenderer struct {
	summaryTemplate *template.Template
}

// NewSummaryRenderer parses the embedded templates.
func NewSummaryRenderer() (*SummaryRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	summaryTemplate, err := template.New("summary.html").ParseFS(trustedFS, "templates/summary.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse summary template")
	}
	return &SummaryRenderer{summaryTemplate: summaryTemplate}, nil
}

// Render renders a SummaryViewModel to the provided writer
func (r *SummaryRenderer) Render(w io.Writer, vm views.SummaryViewModel) error {
	return r.summaryTemplate.Execute(w, vm)
}
