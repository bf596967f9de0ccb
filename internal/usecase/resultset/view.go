package resultset

import (
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/page"
)

// View is a rendered snapshot of a session: the current page's records plus
// everything an adapter needs to draw navigation.
type View struct {
	Scope string
	// Term is the raw search term; Needle is its normalized form.
	Term   string
	Needle string
	// Sort is the preset name, or the canonical key when no preset matches.
	Sort       string
	Loading    bool
	Records    []record.Record
	Page       page.Window
	PlayAllURL string
}

// NoResults reports the empty-results state.
func (v View) NoResults() bool { return v.Page.NoResults() }

// Selected reports whether a scope has been loaded.
func (v View) Selected() bool { return v.Scope != "" }
