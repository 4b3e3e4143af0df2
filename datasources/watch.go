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

package datasources

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// WatchPath returns the local file behind src, or "" if it has none.
func WatchPath(src config.Source) string {
	switch {
	case src.IsFile():
		return src.Path
	case (src.Type == config.SourceSQLite || src.Type == config.SourceDuckDB) && src.DSN == "":
		return src.Path
	}
	return ""
}

// Watch reloads src whenever its file changes and hands each new snapshot to
// onLoad. Bursts of events within debounce collapse into one reload. Failed
// reloads are logged and the previous snapshot stays in use. Watch blocks
// until ctx is done.
func (m *Manager) Watch(ctx context.Context, src config.Source, debounce time.Duration, onLoad func(*tables.Snapshot)) error {
	src = m.Resolve(src)
	path := WatchPath(src)
	if path == "" {
		return errors.Errorf("source type %q has no file to watch", src.Type)
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "failed to resolve watch path")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filepath.Dir(path))
	}

	m.mu.RLock()
	log := m.log.With().Str("path", path).Logger()
	m.mu.RUnlock()
	log.Debug().Msg("watching source")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			snap, err := m.Load(ctx, src)
			if err != nil {
				log.Error().Err(err).Msg("reload failed")
				continue
			}
			onLoad(snap)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
