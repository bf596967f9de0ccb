package page

import "github.com/kailas-cloud/pollsearch/internal/domain/record"

// Widget defaults.
const (
	DefaultPageSize           = 10
	DefaultMaxPaginationLinks = 15
)

// Window is the pagination state for one rendered page.
type Window struct {
	// Requested is the page asked for; CurrentPage is it after clamping.
	Requested   int `json:"requested_page"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`

	// StartIndex and EndIndex bound the current page in the filtered results.
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`

	// Pages lists the page-number links, capped at the max link count.
	Pages         []int `json:"pages"`
	LastLinkPage  int   `json:"last_link_page"`
	ShowMorePages bool  `json:"show_more_pages"`

	ShowNavigation bool `json:"show_navigation"`
	ShowPrev       bool `json:"show_prev"`
	ShowNext       bool `json:"show_next"`

	// HasMoreResults is set when results exceed a single page.
	HasMoreResults bool `json:"has_more_results"`
}

// NoResults reports the empty state.
func (w Window) NoResults() bool { return w.TotalItems == 0 }

// Clamped reports whether the requested page was moved into range.
func (w Window) Clamped() bool { return w.Requested != w.CurrentPage }

// Compute derives the window for total filtered items.
// Requested pages outside [1, TotalPages] are clamped into range (1 when empty).
// Non-positive pageSize and maxLinks fall back to the widget defaults.
func Compute(total, requested, pageSize, maxLinks int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxLinks <= 0 {
		maxLinks = DefaultMaxPaginationLinks
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + pageSize - 1) / pageSize

	current := requested
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	lastLink := min(totalPages, maxLinks)

	pages := make([]int, 0, lastLink)
	for i := 1; i <= lastLink; i++ {
		pages = append(pages, i)
	}

	start := min((current-1)*pageSize, total)
	end := min(start+pageSize, total)

	nav := totalPages > 1

	return Window{
		Requested:      requested,
		CurrentPage:    current,
		PageSize:       pageSize,
		TotalItems:     total,
		TotalPages:     totalPages,
		StartIndex:     start,
		EndIndex:       end,
		Pages:          pages,
		LastLinkPage:   lastLink,
		ShowMorePages:  lastLink < totalPages,
		ShowNavigation: nav,
		ShowPrev:       nav && current > 1,
		ShowNext:       nav && current < lastLink,
		HasMoreResults: total > pageSize,
	}
}

// Slice returns the records of the window's page.
func Slice(records []record.Record, w Window) []record.Record {
	if w.StartIndex >= len(records) || w.StartIndex >= w.EndIndex {
		return []record.Record{}
	}
	end := min(w.EndIndex, len(records))
	return records[w.StartIndex:end]
}
