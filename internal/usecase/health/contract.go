package health

import "context"

// SourcePinger checks record source availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}
