package pollsearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const fixturesYAML = `
scopes:
  "101":
    - {Id: 1, Title: Smoke on the Water, BandName: Deep Purple}
    - {Id: 2, Title: Seven Nation Army, BandName: The White Stripes}
    - {Id: 3, Title: Crazy Train, BandName: Ozzy Osbourne}
    - {Id: 4, Title: Enter Sandman, BandName: Metallica}
    - {Id: 5, Title: Back in Black, BandName: AC/DC}
    - {Id: 6, Title: Sweet Child O' Mine, BandName: Guns N' Roses}
    - {Id: 7, Title: Iron Man, BandName: Black Sabbath}
    - {Id: 8, Title: Whole Lotta Love, BandName: Led Zeppelin}
    - {Id: 9, Title: Day Tripper, BandName: The Beatles}
    - {Id: 10, Title: Layla, BandName: Derek and the Dominos}
    - {Id: 11, Title: Purple Haze, BandName: The Jimi Hendrix Experience}
    - {Id: 12, Title: Plug In Baby, BandName: Muse}
  "empty": []
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(fixturesYAML), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return path
}

func newFixturesClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(append([]Option{WithFixtures(writeFixtures(t))}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func firstID(t *testing.T, v View) float64 {
	t.Helper()
	if len(v.Records) == 0 {
		t.Fatal("view has no records")
	}
	id, ok := v.Records[0].Get("Id").Float()
	if !ok {
		t.Fatal("first record has no numeric Id")
	}
	return id
}

type stubSource struct {
	calls   int
	records map[string][]Record
	err     error
}

func (s *stubSource) Fetch(_ context.Context, scope string) ([]Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[scope], nil
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without a source option")
	}
	if _, err := New(WithSource(nil)); err == nil {
		t.Fatal("expected error for nil custom source")
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	path := writeFixtures(t)
	tests := []struct {
		name string
		opts []Option
	}{
		{"bad preset", []Option{WithSortPresets(map[string]string{"x": "Id:up"})}},
		{"bad default sort", []Option{WithDefaultSort("Id:sideways")}},
		{"missing fixtures", []Option{WithFixtures(filepath.Join(t.TempDir(), "nope.yaml"))}},
		{"empty poll service url", []Option{WithPollService("", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithFixtures(path)}, tt.opts...)
			if _, err := New(opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSession_Flow(t *testing.T) {
	c := newFixturesClient(t, WithPlaylistURLTemplate("/playlists/pollquestion/{scope}"))
	ctx := context.Background()
	s := c.NewSession()

	if _, err := s.Next(); !errors.Is(err, ErrNoScope) {
		t.Fatalf("Next before scope: err = %v, want ErrNoScope", err)
	}

	v, err := s.SelectScope(ctx, "101")
	if err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	if v.Page.TotalItems != 12 || len(v.Records) != DefaultPageSize {
		t.Fatalf("total/page = %d/%d, want 12/10", v.Page.TotalItems, len(v.Records))
	}
	if got := firstID(t, v); got != 12 {
		t.Errorf("first id = %v, want 12 (most recent first)", got)
	}
	if v.PlayAllURL != "/playlists/pollquestion/101" {
		t.Errorf("PlayAllURL = %q", v.PlayAllURL)
	}

	v, err = s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v.Page.CurrentPage != 2 || len(v.Records) != 2 {
		t.Errorf("page 2 = %d records on page %d", len(v.Records), v.Page.CurrentPage)
	}

	v = s.Search("PUR PLE")
	if v.Page.TotalItems != 2 || v.Page.CurrentPage != 1 {
		t.Errorf("search: total %d page %d, want 2 on page 1", v.Page.TotalItems, v.Page.CurrentPage)
	}
	if got := firstID(t, v); got != 11 {
		t.Errorf("first match = %v, want 11", got)
	}

	v, err = s.ChangeSort("Id:asc")
	if err != nil {
		t.Fatalf("ChangeSort: %v", err)
	}
	if got := firstID(t, v); got != 1 {
		t.Errorf("ascending first = %v, want 1", got)
	}

	if _, err := s.ChangeSort("Id:up"); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("err = %v, want ErrInvalidSortKey", err)
	}
}

func TestSession_UnknownScope(t *testing.T) {
	c := newFixturesClient(t)
	_, err := c.NewSession().SelectScope(context.Background(), "999")
	if !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("err = %v, want ErrScopeNotFound", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Scope != "999" {
		t.Errorf("err = %v, want FetchError for scope 999", err)
	}
}

func TestWithScopes_Restricts(t *testing.T) {
	c := newFixturesClient(t, WithScopes("empty"))
	if _, err := c.Query("101").Do(context.Background()); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("err = %v, want ErrScopeNotFound", err)
	}
	v, err := c.Query("empty").Do(context.Background())
	if err != nil {
		t.Fatalf("Query(empty): %v", err)
	}
	if !v.NoResults() {
		t.Error("empty scope should render no results")
	}
}

func TestWidgetOptions(t *testing.T) {
	c := newFixturesClient(t,
		WithPageSize(5),
		WithMaxPaginationLinks(2),
		WithSearchFields("BandName"),
		WithSortPresets(map[string]string{"oldest": "Id:asc", "shuffle": "random"}),
		WithDefaultSort("oldest"),
	)
	ctx := context.Background()

	v, err := c.Query("101").Do(ctx)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(v.Records) != 5 || v.Page.TotalPages != 3 {
		t.Errorf("records/pages = %d/%d, want 5/3", len(v.Records), v.Page.TotalPages)
	}
	if len(v.Page.Pages) != 2 || !v.Page.ShowMorePages {
		t.Errorf("page links = %v, more = %v", v.Page.Pages, v.Page.ShowMorePages)
	}
	if v.Sort != "oldest" || firstID(t, v) != 1 {
		t.Errorf("sort = %q first = %v", v.Sort, firstID(t, v))
	}

	// Title is no longer searched.
	v, err = c.Query("101").Term("haze").Do(ctx)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !v.NoResults() {
		t.Errorf("title match leaked through: %d results", v.Page.TotalItems)
	}

	if got := c.SortOptions(); len(got) != 2 || got[0] != "oldest" || got[1] != "shuffle" {
		t.Errorf("SortOptions = %v", got)
	}
}

func TestWithSource_FetchesOnce(t *testing.T) {
	rec, err := NewRecord(map[string]any{"Id": 1, "Title": "Only"})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	src := &stubSource{records: map[string][]Record{"7": {rec}}}
	c, err := New(WithSource(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if c.Cached("7") {
		t.Fatal("scope cached before first use")
	}
	for range 3 {
		if _, err := c.Query("7").Do(ctx); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if _, err := c.NewSession().SelectScope(ctx, "7"); err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if !c.Cached("7") {
		t.Error("scope should be cached")
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestWithSource_FailureNotCached(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	c, err := New(WithSource(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	for range 2 {
		if _, err := c.Query("7").Do(ctx); !errors.Is(err, ErrFetchFailed) {
			t.Fatalf("err = %v, want ErrFetchFailed", err)
		}
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2 (failures are retried)", src.calls)
	}
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := writeFixtures(t)

	// Two clients on one registry share collectors.
	for range 2 {
		c, err := New(WithFixtures(path), WithMetrics(reg))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		ctx := context.Background()
		if _, err := c.Query("101").Do(ctx); err != nil {
			t.Fatalf("Do: %v", err)
		}
		if _, err := c.Query("101").Do(ctx); err != nil {
			t.Fatalf("Do: %v", err)
		}
		c.Close()
	}

	n, err := testutil.GatherAndCount(reg, "pollsearch_cache_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("cache_total series = %d, want 2 (hit, miss)", n)
	}
	n, err = testutil.GatherAndCount(reg, "pollsearch_fetch_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Errorf("fetch_duration series = %d, want 1", n)
	}
}

func TestSave_SQLite(t *testing.T) {
	ctx := context.Background()
	c, err := New(WithSQLite(filepath.Join(t.TempDir(), "records.db")), WithKeyPrefix("test:"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	songs := []song{
		{ID: 1, Title: "Layla", Band: "Derek and the Dominos"},
		{ID: 2, Title: "Purple Haze", Band: "The Jimi Hendrix Experience", Header: ptr("Classic")},
	}
	records, err := Encode(songs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := c.Save(ctx, "201", records); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := c.Save(ctx, "", records); !errors.Is(err, ErrScopeRequired) {
		t.Errorf("Save without scope err = %v", err)
	}

	got, v, err := QueryAs[song](ctx, c.Query("201").Term("purple"))
	if err != nil {
		t.Fatalf("QueryAs: %v", err)
	}
	if v.Page.TotalItems != 1 || len(got) != 1 {
		t.Fatalf("got %d songs, want 1", len(got))
	}
	if got[0].ID != 2 || got[0].Header == nil || *got[0].Header != "Classic" {
		t.Errorf("song = %+v", got[0])
	}

	// A never-saved scope is an empty list, not an error.
	v, err = c.Query("202").Do(ctx)
	if err != nil {
		t.Fatalf("Query(202): %v", err)
	}
	if !v.NoResults() {
		t.Errorf("unsaved scope has %d results", v.Page.TotalItems)
	}
}

func TestSave_ReadOnlySource(t *testing.T) {
	c := newFixturesClient(t)
	if err := c.Save(context.Background(), "101", nil); !errors.Is(err, ErrReadOnlySource) {
		t.Fatalf("err = %v, want ErrReadOnlySource", err)
	}
}
