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

// Package server serves the drill-down summary over HTTP. Each browser gets
// its own session keyed by a signed cookie; all sessions share one snapshot.
package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/metrics"
	"github.com/google/drilldown/core/query"
	"github.com/google/drilldown/core/rendering"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/tables"
	"github.com/google/drilldown/core/views"
	"github.com/google/drilldown/datasources"
)

const (
	cookieName = "drilldown"
	cookieID   = "id"
	maxAge     = 86400 * 30
)

// Config holds the server settings.
type Config struct {
	Addr          string
	Title         string
	SessionSecret string
	SecureCookie  bool
	Watch         bool
	Debounce      time.Duration
	Source        config.Source
	View          config.View
	Logger        zerolog.Logger
	Manager       *datasources.Manager
	Registry      *prometheus.Registry
}

// Server is the summary web server.
type Server struct {
	cfg      Config
	log      zerolog.Logger
	manager  *datasources.Manager
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	renderer *rendering.SummaryRenderer
	store    *sessions.CookieStore
	notifier *Notifier
	sessions *registry

	mu      sync.RWMutex
	snap    *tables.Snapshot
	version uint64
}

// NewServer creates a server. A missing session secret is replaced by a
// random one, which invalidates cookies on restart.
func NewServer(cfg Config) (*Server, error) {
	renderer, err := rendering.NewSummaryRenderer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create renderer")
	}
	if cfg.Manager == nil {
		cfg.Manager = datasources.NewDefaultManager()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = datasources.DefaultDebounce
	}
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString()
		cfg.Logger.Warn().Msg("no session secret configured, sessions will not survive a restart")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Secure = cfg.SecureCookie

	return &Server{
		cfg:      cfg,
		log:      cfg.Logger,
		manager:  cfg.Manager,
		registry: cfg.Registry,
		metrics:  metrics.New(cfg.Registry),
		renderer: renderer,
		store:    store,
		notifier: NewNotifier(),
		sessions: newRegistry(maxAge * time.Second),
	}, nil
}

// Load reads the configured source and installs it as the shared snapshot.
func (s *Server) Load(ctx context.Context) error {
	snap, err := s.manager.Load(ctx, s.cfg.Source)
	if err != nil {
		return err
	}
	s.SetSnapshot(snap)
	return nil
}

// SetSnapshot replaces the shared snapshot and tells open pages to reload.
// Sessions pick the new snapshot up on their next request.
func (s *Server) SetSnapshot(snap *tables.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.snap = snap
	s.version++
	s.mu.Unlock()
	s.notifier.Broadcast()
}

func (s *Server) snapshot() (*tables.Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.version
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	r.Get("/", s.handleIndex)
	r.Get("/action", s.handleAction)
	r.Post("/action", s.handleAction)
	r.Get("/api/summary", s.handleSummaryJSON)
	r.Get("/events", s.handleEvents)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// Serve runs the server until ctx is cancelled, reloading the source on
// change when watching is enabled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", "http://"+s.cfg.Addr).Msg("starting server")

	if s.cfg.Watch {
		if path := datasources.WatchPath(s.manager.Resolve(s.cfg.Source)); path != "" {
			eg.Go(func() error {
				return s.manager.Watch(egctx, s.cfg.Source, s.cfg.Debounce, func(snap *tables.Snapshot) {
					s.metrics.IncReload()
					s.SetSnapshot(snap)
				})
			})
		} else {
			s.log.Debug().Str("type", s.cfg.Source.Type).Msg("source has no file, not watching")
		}
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server error")
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Debug().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// session returns the caller's session, creating one and setting the cookie
// when the request has none or names an unknown id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*entry, error) {
	// A cookie that fails to decode yields a fresh session, which is fine.
	cs, _ := s.store.Get(r, cookieName)
	id, _ := cs.Values[cookieID].(string)
	if e := s.sessions.get(id); e != nil {
		return e, nil
	}

	id = uuid.NewString()
	e := s.sessions.add(id, session.New(
		session.WithID(id),
		session.WithLogger(s.log),
		session.WithMetrics(s.metrics),
		session.WithAssignment(s.cfg.View.Assignment()),
		session.WithSearch(s.cfg.View.Search),
	))
	cs.Values[cookieID] = id
	if err := cs.Save(r, w); err != nil {
		return nil, errors.Wrap(err, "failed to save session cookie")
	}
	s.log.Debug().Str("session", id).Msg("session created")
	return e, nil
}

// withSession runs fn on the caller's up to date session while holding its lock.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) bool {
	e, err := s.session(w, r)
	if err != nil {
		s.log.Error().Err(err).Msg("session lookup failed")
		http.Error(w, "session error", http.StatusInternalServerError)
		return false
	}
	snap, version := s.snapshot()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync(snap, version)
	fn(e.sess)
	return true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var renderErr error
	ok := s.withSession(w, r, func(sess *session.Session) {
		vm := views.BuildSummaryViewModel(sess, views.Options{
			Title:      s.cfg.Title,
			LiveReload: true,
		})
		renderErr = s.renderer.Render(&buf, vm)
	})
	if !ok {
		return
	}
	if renderErr != nil {
		s.log.Error().Err(renderErr).Msg("render failed")
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action, err := query.ParseAction(r.Form)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodPost && !action.Op.IsToggle() {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.withSession(w, r, action.Apply) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var renderErr error
	ok := s.withSession(w, r, func(sess *session.Session) {
		renderErr = rendering.RenderJSON(&buf, sess)
	})
	if !ok {
		return
	}
	if renderErr != nil {
		http.Error(w, renderErr.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-ch:
			if err := sse.ExecuteScript("window.location.reload()"); err != nil {
				s.log.Debug().Err(err).Msg("event stream closed")
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
