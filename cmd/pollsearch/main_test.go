package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/pollsearch/internal/config"
	chiTransport "github.com/kailas-cloud/pollsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/pollsearch/internal/usecase/health"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
	"github.com/kailas-cloud/pollsearch/internal/version"
)

const testFixtures = `
scopes:
  "101":
    - {Id: 1, Title: Smoke on the Water, BandName: Deep Purple}
    - {Id: 2, Title: Seven Nation Army, BandName: The White Stripes}
    - {Id: 3, Title: Purple Haze, BandName: The Jimi Hendrix Experience}
  "102":
    - {Id: 21, Title: Forever Changes, BandName: Love}
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(testFixtures), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return path
}

func testConfig(driver string) config.Config {
	cfg := config.Config{HTTP: config.HTTPConfig{Port: 8080}}
	cfg.Source.Driver = driver
	cfg.ApplyDefaults()
	return cfg
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	want := map[string]bool{"serve": false, "browse": false, "search": false, "seed": false, "version": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"env", "log-level"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), version.Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestBuildSource_File(t *testing.T) {
	cfg := testConfig(config.DriverFile)
	cfg.Source.File.Path = writeFixtures(t)

	src, err := buildSource(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	defer src.close()

	recs, err := src.fetch.Fetch(context.Background(), "101")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("records = %d, want 3", len(recs))
	}
	if err := src.pinger.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestBuildSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown driver", testConfig("carrier-pigeon")},
		{"missing fixtures", func() config.Config {
			c := testConfig(config.DriverFile)
			c.Source.File.Path = filepath.Join(t.TempDir(), "nope.yaml")
			return c
		}()},
		{"http without base url", testConfig(config.DriverHTTP)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildSource(context.Background(), tt.cfg, zap.NewNop()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSeedThenServeFromSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverSQLite)
	cfg.Source.SQLite.Path = filepath.Join(t.TempDir(), "pollsearch.db")

	n, err := seedFixtures(ctx, cfg, writeFixtures(t), zap.NewNop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d scopes, want 2", n)
	}

	src, err := buildSource(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	defer src.close()

	proc, err := newProcessor(cfg, src, zap.NewNop())
	if err != nil {
		t.Fatalf("processor: %v", err)
	}
	sess := proc.NewSession()
	view, err := sess.SelectScope(ctx, "101")
	if err != nil {
		t.Fatalf("select scope: %v", err)
	}
	if len(view.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(view.Records))
	}
	if id, _ := view.Records[0].Get("Id").Float(); id != 3 {
		t.Errorf("first id = %v, want 3 (recent first)", id)
	}
}

func TestSeed_RejectsNonListDriver(t *testing.T) {
	if _, err := seedFixtures(context.Background(), testConfig(config.DriverFile), writeFixtures(t), zap.NewNop()); err == nil {
		t.Error("expected error for file driver")
	}
}

func TestRouter(t *testing.T) {
	cfg := testConfig(config.DriverFile)
	cfg.Source.File.Path = writeFixtures(t)
	cfg.Auth.APIKeys = []string{"secret"}

	src, err := buildSource(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	proc, err := newProcessor(cfg, src, zap.NewNop())
	if err != nil {
		t.Fatalf("processor: %v", err)
	}
	server := chiTransport.NewServer(proc, resultset.NewRegistry(proc, 0, 0),
		healthuc.New(src.pinger, src.name), scopeItems(cfg), zap.NewNop())

	core, logs := observer.New(zapcore.InfoLevel)
	h := newRouter(server, cfg.Auth.APIKeys, zap.New(core))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("health = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/scopes/101/results", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated search = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/scopes/101/results?term=purple", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", rr.Code, rr.Body)
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 3 {
		t.Fatalf("canonical log lines = %d, want 3", len(entries))
	}
	if got := entries[2].ContextMap()["route"]; got != "/scopes/{scope}/results" {
		t.Errorf("route = %v", got)
	}
}

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp chiTransport.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != chiTransport.ErrorResponseCodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic should be logged")
	}
}

func TestScopeItems(t *testing.T) {
	cfg := testConfig(config.DriverFile)
	cfg.Widget.Scopes = []config.ScopeConfig{{ID: "101", Title: "Riffs"}}
	items := scopeItems(cfg)
	if len(items) != 1 || items[0].ID != "101" || items[0].Title != "Riffs" {
		t.Errorf("items = %+v", items)
	}
}
