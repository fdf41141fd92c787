// api/audit/service.go
package audit

import (
	"context"
	"time"
)

// Service is the append-only decision journal consumed by the token
// authority. Record never fails from the caller's perspective; sink
// errors are swallowed after logging so the hot path stays available.
type Service interface {
	Record(ctx context.Context, entry Entry)
	Query(userEmail, datasetName string, since time.Time) []Entry
	Prune(cutoff time.Time) int
}
