// api/audit/journal.go
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
)

// Compaction bounds for the in-memory journal. When the entry count crosses
// the high-water mark the journal keeps only its most recent half, so the
// hot path never blocks on a disk write.
const (
	defaultHighWater = 10000
	compactKeep      = defaultHighWater / 2
)

// Journal is the in-memory audit log. Appends are O(1); the journal is
// bounded by compaction and by the retention sweep. An optional repository
// receives a best-effort copy of every entry.
type Journal struct {
	mu        sync.Mutex
	entries   []Entry
	highWater int
	repo      Repository
}

// NewJournal creates a journal with the default high-water mark. The
// repository may be nil; entries then live in memory only.
func NewJournal(repo Repository) *Journal {
	return &Journal{
		highWater: defaultHighWater,
		repo:      repo,
	}
}

// Record appends an entry, compacting if the journal has grown past its
// high-water mark. Repository failures are logged and dropped.
func (j *Journal) Record(ctx context.Context, entry Entry) {
	j.mu.Lock()
	j.entries = append(j.entries, entry)
	if len(j.entries) > j.highWater {
		kept := make([]Entry, compactKeep)
		copy(kept, j.entries[len(j.entries)-compactKeep:])
		j.entries = kept
		logger.Info("Compacted audit journal", zap.Int("kept", compactKeep))
	}
	j.mu.Unlock()

	if j.repo != nil {
		if err := j.repo.LogEntry(ctx, entry); err != nil {
			logger.Warn("Audit sink write failed",
				zap.Error(err),
				zap.String("action", entry.Action),
				zap.String("user", entry.UserEmail))
		}
	}
}

// Query returns entries at or after the cutoff, optionally filtered by user
// and dataset. The result is an independent slice, safe to hold across
// further appends.
func (j *Journal) Query(userEmail, datasetName string, since time.Time) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	var matched []Entry
	for _, entry := range j.entries {
		if entry.Timestamp.Before(since) {
			continue
		}
		if userEmail != "" && entry.UserEmail != userEmail {
			continue
		}
		if datasetName != "" && entry.DatasetName != datasetName {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}

// Prune drops entries older than the cutoff and returns how many were
// removed. Driven by the daily retention sweep.
func (j *Journal) Prune(cutoff time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	kept := j.entries[:0]
	for _, entry := range j.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	removed := len(j.entries) - len(kept)
	j.entries = kept
	return removed
}

// Len reports the current entry count.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
