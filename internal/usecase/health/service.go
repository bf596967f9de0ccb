package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	source     SourcePinger
	sourceName string
}

// New creates a Service for the configured record source ("http", "redis", ...).
func New(source SourcePinger, sourceName string) *Service {
	return &Service{source: source, sourceName: sourceName}
}

// Check pings the record source. Cached scopes keep being served while the
// source is down, so a failing source degrades the service instead of failing it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	name := "source"
	if s.sourceName != "" {
		name = "source:" + s.sourceName
	}

	if s.source == nil {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{name: CheckError}}
	}

	if err := s.source.Ping(ctx); err != nil {
		checks[name] = CheckError
	} else {
		checks[name] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
