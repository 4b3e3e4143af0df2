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

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/rendering"
	"github.com/google/drilldown/core/tables"
)

func testSnapshot() *tables.Snapshot {
	return tables.NewSnapshot([]*columns.ColumnSchema{
		columns.NewColumnSchema("city", "City", false),
		columns.NewColumnSchema("area", "Area", false),
		columns.NewColumnSchema("ftu", "FTU", true),
	}, []tables.Row{
		{"Pune", "Kothrud", 150},
		{"Pune", "Wakad", 50},
		{"Mumbai", "Andheri", 200},
	})
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	cfg.SessionSecret = "test-secret"
	s, err := NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// post sends an action form and follows the redirect back to the page.
func post(t *testing.T, c *http.Client, base string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(base+"/action", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func assign(level, dim string) url.Values {
	return url.Values{"op": {"assign"}, "level": {level}, "dim": {dim}}
}

func summary(t *testing.T, c *http.Client, base string) rendering.SummaryJSON {
	t.Helper()
	code, body := get(t, c, base+"/api/summary")
	require.Equal(t, http.StatusOK, code)
	var out rendering.SummaryJSON
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestIndexWaitsForData(t *testing.T) {
	_, ts := newTestServer(t, Config{Title: "FTU"})
	code, body := get(t, newClient(t), ts.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Waiting for data.")
}

func TestActionFlow(t *testing.T) {
	s, ts := newTestServer(t, Config{Title: "FTU"})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)

	code, body := post(t, c, ts.URL, assign("1", "City"))
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Pune")
	assert.Contains(t, body, "Mumbai")

	post(t, c, ts.URL, assign("2", "Area"))
	get(t, c, ts.URL+"/action?op=toggle1&k1=Pune")

	out := summary(t, c, ts.URL)
	assert.Equal(t, "City", out.Levels[0])
	assert.Equal(t, 400.0, out.GrandTotal)
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "Pune", out.Groups[0].Key)
	assert.True(t, out.Groups[0].Expanded)
	require.Len(t, out.Groups[0].Children, 2)
	assert.Empty(t, out.Groups[1].Children)

	post(t, c, ts.URL, url.Values{"op": {"clear"}})
	out = summary(t, c, ts.URL)
	assert.Equal(t, "", out.Levels[0])
	assert.Empty(t, out.Groups)
}

func TestActionRedirects(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := c.PostForm(ts.URL+"/action", url.Values{"op": {"search"}, "q": {"pu"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestActionRejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	c := newClient(t)
	for _, q := range []string{"", "op=bogus", "op=assign&level=4&dim=City", "op=toggle2&k1=Pune"} {
		code, _ := get(t, c, ts.URL+"/action?"+q)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestChangesRequirePost(t *testing.T) {
	s, ts := newTestServer(t, Config{View: config.View{Level1: "City"}})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)

	for _, q := range []string{"op=clear", "op=search&q=pune", "op=assign&level=1&dim=Area"} {
		code, _ := get(t, c, ts.URL+"/action?"+q)
		assert.Equal(t, http.StatusMethodNotAllowed, code, q)
	}
	out := summary(t, c, ts.URL)
	assert.Equal(t, "City", out.Levels[0])
	assert.Equal(t, "", out.Search)

	code, _ := get(t, c, ts.URL+"/action?op=toggle1&k1=Pune")
	assert.Equal(t, http.StatusOK, code)
}

func TestSessionCookieRoundTrips(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := c.PostForm(ts.URL+"/action", url.Values{"op": {"search"}, "q": {"pune"}})
	require.NoError(t, err)
	resp.Body.Close()
	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, cookieName+"=")
	assert.NotContains(t, cookie, "Secure")

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	assert.Len(t, c.Jar.Cookies(u), 1)

	assert.Equal(t, "pune", summary(t, c, ts.URL).Search)
	assert.Equal(t, 1, s.sessions.len())
}

func TestSecureCookieOption(t *testing.T) {
	_, ts := newTestServer(t, Config{SecureCookie: true})
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "Secure")
}

func TestSessionsAreIsolated(t *testing.T) {
	s, ts := newTestServer(t, Config{View: config.View{Level1: "City"}})
	s.SetSnapshot(testSnapshot())
	a, b := newClient(t), newClient(t)

	get(t, a, ts.URL+"/action?op=toggle1&k1=Pune")
	post(t, b, ts.URL, url.Values{"op": {"clear"}})

	outA := summary(t, a, ts.URL)
	outB := summary(t, b, ts.URL)
	assert.Equal(t, "City", outA.Levels[0])
	assert.Len(t, outA.Groups, 2)
	assert.Equal(t, "", outB.Levels[0])
	assert.Equal(t, 2, s.sessions.len())
}

func TestSnapshotSwapKeepsSessionState(t *testing.T) {
	s, ts := newTestServer(t, Config{View: config.View{Level1: "City"}})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)
	post(t, c, ts.URL, url.Values{"op": {"search"}, "q": {"pune"}})
	assert.Equal(t, 200.0, summary(t, c, ts.URL).GrandTotal)

	s.SetSnapshot(tables.NewSnapshot(testSnapshot().Columns(), []tables.Row{
		{"Pune", "Kothrud", 10},
		{"Mumbai", "Andheri", 20},
	}))
	out := summary(t, c, ts.URL)
	assert.Equal(t, "pune", out.Search)
	assert.Equal(t, 10.0, out.GrandTotal)
}

func TestHealthAndMetrics(t *testing.T) {
	s, ts := newTestServer(t, Config{View: config.View{Level1: "City"}})
	s.SetSnapshot(testSnapshot())
	c := newClient(t)

	code, body := get(t, c, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	get(t, c, ts.URL+"/")
	code, body = get(t, c, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "drilldown_aggregations_total")
	assert.Contains(t, body, "drilldown_snapshot_rows 3")
}

func TestEventsStreamReload(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for s.notifier.Len() == 0 {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		s.SetSnapshot(testSnapshot())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	found := make(chan bool, 1)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if strings.Contains(sc.Text(), "window.location.reload()") {
				found <- true
				return
			}
		}
		found <- false
	}()
	select {
	case ok := <-found:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload event received")
	}
}

func TestLoadFromSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("city,ftu\nPune,5\nMumbai,7\n"), 0o644))

	s, ts := newTestServer(t, Config{
		Source: config.Source{Type: config.SourceCSV, Path: path, Delimiter: ",", HasHeader: true},
		View:   config.View{Level1: "city"},
	})
	require.NoError(t, s.Load(context.Background()))

	out := summary(t, newClient(t), ts.URL)
	assert.Equal(t, 12.0, out.GrandTotal)
	assert.Len(t, out.Groups, 2)
}

func TestRegistryDropsIdleSessions(t *testing.T) {
	r := newRegistry(time.Minute)
	now := time.Unix(1000, 0)
	r.now = func() time.Time { return now }
	r.add("old", nil)
	now = now.Add(2 * time.Minute)
	r.add("new", nil)
	assert.Nil(t, r.get("old"))
	assert.NotNil(t, r.get("new"))
	assert.Nil(t, r.get(""))
}
