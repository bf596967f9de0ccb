package resultset

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
)

func TestSession_FilterThenSortExample(t *testing.T) {
	c := newMockCache(map[string][]record.Record{
		"q1": {poll(1, "Abc", ""), poll(2, "xyz", "")},
	})
	s := newTestProcessor(c, Config{}).NewSession()

	if _, err := s.SelectScope(context.Background(), "q1"); err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	v := s.Search("ab")
	if got := ids(v.Records); !equalIDs(got, []float64{1}) {
		t.Fatalf("filtered ids = %v, want [1]", got)
	}

	v, err := s.ChangeSort("Id:desc")
	if err != nil {
		t.Fatalf("ChangeSort: %v", err)
	}
	if got := ids(v.Records); !equalIDs(got, []float64{1}) {
		t.Errorf("sorted ids = %v, want [1]", got)
	}
}

func TestNewSession_StartsOnFirstPageWithDefaultSort(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(15)})
	s := newTestProcessor(c, Config{DefaultSort: order.ByField("Id", false)}).NewSession()

	v := s.View()
	if v.Selected() || v.Sort != "Id:asc" || v.Page.CurrentPage != 1 {
		t.Fatalf("fresh view = scope %q sort %q page %d", v.Scope, v.Sort, v.Page.CurrentPage)
	}

	v, err := s.SelectScope(context.Background(), "q1")
	if err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	if got := ids(v.Records); len(got) != 10 || got[0] != 1 {
		t.Errorf("first page ids = %v, want 1..10", got)
	}
}

func TestSession_InitialSortIsRecentFirst(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(5)})
	s := newTestProcessor(c, Config{}).NewSession()

	v, err := s.SelectScope(context.Background(), "q1")
	if err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	if got := ids(v.Records); !equalIDs(got, []float64{5, 4, 3, 2, 1}) {
		t.Errorf("ids = %v, want descending", got)
	}
	if v.Sort != order.PresetRecent {
		t.Errorf("Sort = %q, want %q", v.Sort, order.PresetRecent)
	}
	if v.Loading {
		t.Error("Loading should be false after fetch")
	}
}

func TestSession_DoesNotMutateCachedSlice(t *testing.T) {
	src := numbered(4)
	c := newMockCache(map[string][]record.Record{"q1": src})
	s := newTestProcessor(c, Config{}).NewSession()

	_, _ = s.SelectScope(context.Background(), "q1")
	_, _ = s.ChangeSort("random")
	if got := ids(src); !equalIDs(got, []float64{1, 2, 3, 4}) {
		t.Errorf("cached slice reordered: %v", got)
	}
}

func TestSession_RandomIsPermutation(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(9)})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "q1")

	v, err := s.ChangeSort("RANDOM")
	if err != nil {
		t.Fatalf("ChangeSort: %v", err)
	}
	if v.Sort != order.PresetRandom {
		t.Errorf("Sort = %q", v.Sort)
	}
	seen := map[float64]bool{}
	for _, id := range ids(v.Records) {
		seen[id] = true
	}
	if len(seen) != 9 {
		t.Errorf("shuffle lost records: %v", ids(v.Records))
	}
}

func TestSession_SearchAndSortResetPage(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(35)})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "q1")

	v, _ := s.SelectPage(3)
	if v.Page.CurrentPage != 3 {
		t.Fatalf("CurrentPage = %d, want 3", v.Page.CurrentPage)
	}
	if v = s.Search(""); v.Page.CurrentPage != 1 {
		t.Errorf("after Search CurrentPage = %d, want 1", v.Page.CurrentPage)
	}
	_, _ = s.SelectPage(2)
	if v, _ = s.ChangeSort("recent"); v.Page.CurrentPage != 1 {
		t.Errorf("after ChangeSort CurrentPage = %d, want 1", v.Page.CurrentPage)
	}
}

func TestSession_Pagination(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(25)})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "q1")

	v, err := s.SelectPage(2)
	if err != nil {
		t.Fatalf("SelectPage: %v", err)
	}
	if v.Page.StartIndex != 10 || v.Page.EndIndex != 20 || v.Page.TotalPages != 3 {
		t.Errorf("window = %+v", v.Page)
	}
	if got := ids(v.Records); len(got) != 10 || got[0] != 15 {
		t.Errorf("page 2 ids = %v", got)
	}

	v, _ = s.SelectPage(99)
	if v.Page.CurrentPage != 3 || !v.Page.Clamped() {
		t.Errorf("clamped page = %d (clamped=%v)", v.Page.CurrentPage, v.Page.Clamped())
	}
	if len(v.Records) != 5 {
		t.Errorf("last page len = %d, want 5", len(v.Records))
	}

	v, _ = s.Next()
	if v.Page.CurrentPage != 3 {
		t.Errorf("Next past the end moved to %d", v.Page.CurrentPage)
	}
	v, _ = s.Prev()
	if v.Page.CurrentPage != 2 {
		t.Errorf("Prev = %d, want 2", v.Page.CurrentPage)
	}
	_, _ = s.Prev()
	v, _ = s.Prev()
	if v.Page.CurrentPage != 1 {
		t.Errorf("Prev before start moved to %d", v.Page.CurrentPage)
	}
	v, _ = s.Next()
	if v.Page.CurrentPage != 2 {
		t.Errorf("Next = %d, want 2", v.Page.CurrentPage)
	}
}

func TestSession_PageOpsNeedScope(t *testing.T) {
	s := newTestProcessor(newMockCache(nil), Config{}).NewSession()

	if _, err := s.SelectPage(1); !errors.Is(err, domain.ErrNoScope) {
		t.Errorf("SelectPage err = %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, domain.ErrNoScope) {
		t.Errorf("Next err = %v", err)
	}
	if _, err := s.Prev(); !errors.Is(err, domain.ErrNoScope) {
		t.Errorf("Prev err = %v", err)
	}

	// Term and sort may be set before a scope is chosen.
	v := s.Search("abc")
	if v.Selected() || !v.NoResults() {
		t.Errorf("unexpected view before scope: %+v", v)
	}
	if _, err := s.ChangeSort("random"); err != nil {
		t.Errorf("ChangeSort: %v", err)
	}
}

func TestSession_InvalidSort(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(3)})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "q1")

	if _, err := s.ChangeSort("Id:sideways"); !errors.Is(err, domain.ErrInvalidSortKey) {
		t.Errorf("err = %v, want ErrInvalidSortKey", err)
	}
	if v := s.View(); v.Sort != order.PresetRecent {
		t.Errorf("sort changed after invalid key: %q", v.Sort)
	}
}

func TestSession_FetchFailureKeepsPriorView(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(3), "q2": numbered(7)})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "q1")

	c.setErr("q2", errors.New("connection refused"))
	v, err := s.SelectScope(context.Background(), "q2")
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	if v.Scope != "q1" || len(v.Records) != 3 {
		t.Errorf("view after failure = scope %q, %d records", v.Scope, len(v.Records))
	}
	if v.Loading {
		t.Error("Loading should be cleared after failure")
	}

	// The next selection of the scope retries.
	c.setErr("q2", nil)
	v, err = s.SelectScope(context.Background(), "q2")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v.Scope != "q2" || len(v.Records) != 7 {
		t.Errorf("view after retry = scope %q, %d records", v.Scope, len(v.Records))
	}
}

func TestSession_LoadingWhileFetching(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(2)})
	gate := c.gate("q1")
	s := newTestProcessor(c, Config{}).NewSession()

	done := make(chan View)
	go func() {
		v, _ := s.SelectScope(context.Background(), "q1")
		done <- v
	}()
	<-c.entered

	if v := s.View(); !v.Loading {
		t.Error("expected Loading while the fetch is in flight")
	}
	close(gate)
	v := <-done
	if v.Loading || len(v.Records) != 2 {
		t.Errorf("final view loading=%v records=%d", v.Loading, len(v.Records))
	}
}

func TestSession_StaleFetchDropped(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"slow": numbered(4), "fast": numbered(1)})
	_, _ = c.Get(context.Background(), "fast") // pre-cache
	<-c.entered
	gate := c.gate("slow")
	s := newTestProcessor(c, Config{}).NewSession()

	done := make(chan View)
	go func() {
		v, _ := s.SelectScope(context.Background(), "slow")
		done <- v
	}()
	<-c.entered

	v, err := s.SelectScope(context.Background(), "fast")
	if err != nil {
		t.Fatalf("SelectScope fast: %v", err)
	}
	if v.Loading {
		t.Error("cached selection should clear loading")
	}
	close(gate)
	<-done

	if v := s.View(); v.Scope != "fast" || len(v.Records) != 1 {
		t.Errorf("stale fetch replaced view: scope %q, %d records", v.Scope, len(v.Records))
	}
}

func TestSession_ScopeValidation(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"q1": numbered(1)})
	s := newTestProcessor(c, Config{Scopes: []string{"q1"}}).NewSession()

	if _, err := s.SelectScope(context.Background(), ""); !errors.Is(err, domain.ErrScopeRequired) {
		t.Errorf("err = %v, want ErrScopeRequired", err)
	}
	if _, err := s.SelectScope(context.Background(), "q9"); !errors.Is(err, domain.ErrScopeNotFound) {
		t.Errorf("err = %v, want ErrScopeNotFound", err)
	}
}

func TestSession_PlayAllURL(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"42": numbered(1)})
	s := newTestProcessor(c, Config{PlaylistURLTemplate: "/playlists/pollquestion/{scope}"}).NewSession()

	if v := s.View(); v.PlayAllURL != "" {
		t.Errorf("PlayAllURL before scope = %q", v.PlayAllURL)
	}
	v, _ := s.SelectScope(context.Background(), "42")
	if v.PlayAllURL != "/playlists/pollquestion/42" {
		t.Errorf("PlayAllURL = %q", v.PlayAllURL)
	}
}

func TestSession_EmptyScope(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"none": {}})
	s := newTestProcessor(c, Config{}).NewSession()

	v, err := s.SelectScope(context.Background(), "none")
	if err != nil {
		t.Fatalf("SelectScope: %v", err)
	}
	if !v.NoResults() || v.Page.ShowNavigation {
		t.Errorf("empty scope view = %+v", v.Page)
	}
}

func TestSession_SwitchBackUsesCache(t *testing.T) {
	c := newMockCache(map[string][]record.Record{"a": numbered(2), "b": numbered(3)})
	s := newTestProcessor(c, Config{}).NewSession()

	_, _ = s.SelectScope(context.Background(), "a")
	_, _ = s.SelectScope(context.Background(), "b")
	v, _ := s.SelectScope(context.Background(), "a")
	if len(v.Records) != 2 {
		t.Errorf("records = %d, want 2", len(v.Records))
	}
	if c.calls != 2 {
		t.Errorf("cache Get called %d times, want 2", c.calls)
	}
}

func TestSession_TermKeptAcrossScopes(t *testing.T) {
	c := newMockCache(map[string][]record.Record{
		"a": {poll(1, "Abc", ""), poll(2, "zzz", "")},
		"b": {poll(3, "abacus", ""), poll(4, "qqq", "The Abbots")},
	})
	s := newTestProcessor(c, Config{}).NewSession()
	_, _ = s.SelectScope(context.Background(), "a")
	s.Search("ab")

	v, _ := s.SelectScope(context.Background(), "b")
	if got := ids(v.Records); !equalIDs(got, []float64{4, 3}) {
		t.Errorf("ids = %v, want [4 3]", got)
	}
	if v.Needle != "ab" {
		t.Errorf("Needle = %q", v.Needle)
	}
}
