package db

// Op constants name the failing storage command for error context.
const (
	OpPing    = "PING"
	OpLRange  = "LRANGE"
	OpRPush   = "RPUSH"
	OpDel     = "DEL"
	OpMigrate = "MIGRATE"
	OpSelect  = "SELECT"
	OpInsert  = "INSERT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
