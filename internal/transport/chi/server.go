package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/pollsearch/internal/logger"
	healthuc "github.com/kailas-cloud/pollsearch/internal/usecase/health"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes result set sessions and one-shot searches over HTTP.
type Server struct {
	processor     *resultset.Processor
	sessions      *resultset.Registry
	health        *healthuc.Service
	scopes        []ScopeItem
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. scopes is what GET /scopes lists.
func NewServer(
	processor *resultset.Processor,
	sessions *resultset.Registry,
	health *healthuc.Service,
	scopes []ScopeItem,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		processor: processor,
		sessions:  sessions,
		health:    health,
		scopes:    scopes,
		logger:    logger,
	}
	// Order matters: a fetch error wrapping ErrScopeNotFound is a 404.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrScopeNotFound, http.StatusNotFound, ErrorResponseCodeScopeNotFound),
		sentinelHandler(domain.ErrScopeRequired, http.StatusBadRequest, ErrorResponseCodeScopeRequired),
		sentinelHandler(domain.ErrNoScope, http.StatusBadRequest, ErrorResponseCodeNoScope),
		sentinelHandler(domain.ErrInvalidSortKey, http.StatusBadRequest, ErrorResponseCodeInvalidSortKey),
		sentinelHandler(domain.ErrInvalidParams, http.StatusBadRequest, ErrorResponseCodeValidation),
		sentinelHandler(domain.ErrTooManySessions, http.StatusTooManyRequests, ErrorResponseCodeTooManySessions),
		fetchErrorHandler,
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/scopes", s.ListScopes)
	r.Get("/scopes/{scope}/results", s.SearchScope)

	r.Post("/sessions", s.CreateSession)
	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Put("/scope", s.SelectScope)
		r.Put("/term", s.SetTerm)
		r.Put("/sort", s.SetSort)
		r.Put("/page", s.SelectPage)
		r.Post("/next", s.NextPage)
		r.Post("/prev", s.PrevPage)
	})
}

// Handler returns a router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// ListScopes handles GET /scopes.
func (s *Server) ListScopes(w http.ResponseWriter, r *http.Request) {
	cfg := s.processor.Config()
	scopes := s.scopes
	if scopes == nil {
		scopes = []ScopeItem{}
	}
	writeJSON(w, http.StatusOK, ScopesResponse{
		Scopes:      scopes,
		SortOptions: cfg.Presets.Names(),
		DefaultSort: cfg.Presets.NameOf(cfg.DefaultSort),
	})
}

// SearchScope handles GET /scopes/{scope}/results?term=&sort=&page=.
func (s *Server) SearchScope(w http.ResponseWriter, r *http.Request) {
	var scope string
	if err := bindPath("scope", chi.URLParam(r, "scope"), &scope); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	var term, sortExpr *string
	var pageNum *int
	if err := runtime.BindQueryParameter("form", true, false, "term", q, &term); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", q, &sortExpr); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &pageNum); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	req, err := request.New(scope, deref(term), deref(sortExpr), derefInt(pageNum, request.DefaultPage),
		s.processor.Presets(), s.processor.Config().DefaultSort)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	view, err := s.processor.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse("", view))
}

// CreateSession handles POST /sessions. An optional body seeds the sort,
// term and scope, applied in that order.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, sess, err := s.sessions.Create()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	view := sess.View()
	if req.Sort != "" {
		if view, err = sess.ChangeSort(req.Sort); err != nil {
			_ = s.sessions.Delete(id)
			s.handleDomainError(w, err)
			return
		}
	}
	if req.Term != "" {
		view = sess.Search(req.Term)
	}
	if req.Scope != "" {
		ctx := logpkg.With(r.Context(), zap.String("session", id))
		if view, err = sess.SelectScope(ctx, req.Scope); err != nil {
			_ = s.sessions.Delete(id)
			s.handleDomainError(w, err)
			return
		}
	}

	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, viewToResponse(id, view))
}

// GetSession handles GET /sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, sess.View()))
}

// DeleteSession handles DELETE /sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectScope handles PUT /sessions/{session}/scope.
func (s *Server) SelectScope(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	ctx := logpkg.With(r.Context(), zap.String("session", id))
	view, err := sess.SelectScope(ctx, value)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, view))
}

// SetTerm handles PUT /sessions/{session}/term.
func (s *Server) SetTerm(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	if len(value) > request.MaxTermLength {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidation, "search term too long")
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, sess.Search(value)))
}

// SetSort handles PUT /sessions/{session}/sort.
func (s *Server) SetSort(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	view, err := sess.ChangeSort(value)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, view))
}

// SelectPage handles PUT /sessions/{session}/page?page=N.
func (s *Server) SelectPage(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var n int
	if err := runtime.BindQueryParameter("form", true, true, "page", r.URL.Query(), &n); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	view, err := sess.SelectPage(n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, view))
}

// NextPage handles POST /sessions/{session}/next.
func (s *Server) NextPage(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, (*resultset.Session).Next)
}

// PrevPage handles POST /sessions/{session}/prev.
func (s *Server) PrevPage(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, (*resultset.Session).Prev)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, move func(*resultset.Session) (resultset.View, error)) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := move(sess)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(id, view))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// session resolves the {session} path parameter, writing the error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *resultset.Session, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return "", nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return "", nil, false
	}
	return id, sess, true
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var raw string
	if err := bindPath("session", chi.URLParam(r, "session"), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid session id")
		return "", false
	}
	return id.String(), true
}

func bindPath(name, value string, dest *string) error {
	return runtime.BindStyledParameterWithOptions("simple", name, value, dest,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
}

// decodeBody decodes an optional JSON body into v.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeValue(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ValueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return "", false
	}
	return req.Value, true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrScopeNotFound,
		domain.ErrScopeRequired,
		domain.ErrNoScope,
		domain.ErrInvalidSortKey,
		domain.ErrInvalidParams,
		domain.ErrTooManySessions,
		domain.ErrFetchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fetchErrorHandler reports a failed remote fetch with the scope that failed.
func fetchErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrFetchFailed) {
		return false
	}
	resp := ErrorResponse{Code: ErrorResponseCodeFetchFailed, Message: msg}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		resp.Scope = fe.Scope
	}
	writeJSON(w, http.StatusBadGateway, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
