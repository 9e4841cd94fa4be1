package audit

import "context"

// Guard policy outcomes recorded against a permission.
const (
	ActionGranted = "granted"
	ActionDenied  = "denied"
)

// Recorder appends permission access log entries. Implementations must be
// safe for concurrent use; recording failures never influence the request
// outcome.
type Recorder interface {
	Record(ctx context.Context, userID int64, permission string, action string)
}

// NopRecorder discards every entry. Used when audit logging is disabled and
// in tests.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, userID int64, permission string, action string) {}
