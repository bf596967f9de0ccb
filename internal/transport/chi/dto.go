package chi

import (
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/page"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest      ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized    ErrorResponseCode = "unauthorized"
	ErrorResponseCodeSessionNotFound ErrorResponseCode = "session_not_found"
	ErrorResponseCodeScopeNotFound   ErrorResponseCode = "scope_not_found"
	ErrorResponseCodeScopeRequired   ErrorResponseCode = "scope_required"
	ErrorResponseCodeNoScope         ErrorResponseCode = "no_scope"
	ErrorResponseCodeInvalidSortKey  ErrorResponseCode = "invalid_sort_key"
	ErrorResponseCodeValidation      ErrorResponseCode = "validation_failed"
	ErrorResponseCodeTooManySessions ErrorResponseCode = "too_many_sessions"
	ErrorResponseCodeFetchFailed     ErrorResponseCode = "fetch_failed"
	ErrorResponseCodeInternalError   ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	Scope   string            `json:"scope,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CreateSessionRequest is the POST /sessions body. All fields are optional.
type CreateSessionRequest struct {
	Scope string `json:"scope"`
	Term  string `json:"term"`
	Sort  string `json:"sort"`
}

// ValueRequest is the body of the PUT /sessions/{session}/scope|term|sort routes.
type ValueRequest struct {
	Value string `json:"value"`
}

// ScopeItem describes a selectable scope.
type ScopeItem struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// ScopesResponse is the GET /scopes body.
type ScopesResponse struct {
	Scopes      []ScopeItem `json:"scopes"`
	SortOptions []string    `json:"sort_options"`
	DefaultSort string      `json:"default_sort"`
}

// ViewResponse is a rendered widget state.
type ViewResponse struct {
	ID         string          `json:"id,omitempty"`
	Scope      string          `json:"scope"`
	Term       string          `json:"term"`
	Needle     string          `json:"needle"`
	Sort       string          `json:"sort"`
	Loading    bool            `json:"loading"`
	NoResults  bool            `json:"no_results"`
	Records    []record.Record `json:"records"`
	Page       page.Window     `json:"page"`
	PlayAllURL string          `json:"play_all_url,omitempty"`
}

func viewToResponse(id string, v resultset.View) ViewResponse {
	recs := v.Records
	if recs == nil {
		recs = []record.Record{}
	}
	pg := v.Page
	if pg.Pages == nil {
		pg.Pages = []int{}
	}
	return ViewResponse{
		ID:         id,
		Scope:      v.Scope,
		Term:       v.Term,
		Needle:     v.Needle,
		Sort:       v.Sort,
		Loading:    v.Loading,
		NoResults:  v.NoResults(),
		Records:    recs,
		Page:       pg,
		PlayAllURL: v.PlayAllURL,
	}
}

// ViewToResponse renders a one-shot view (no session id).
func ViewToResponse(v resultset.View) ViewResponse {
	return viewToResponse("", v)
}
