// api/audit/journal_test.go
package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
)

func TestJournal(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("QueryFilters", func(t *testing.T) {
		j := NewJournal(nil)
		j.Record(ctx, Entry{Timestamp: base, UserEmail: "alice@example.com", DatasetName: "sales", Action: ActionGranted})
		j.Record(ctx, Entry{Timestamp: base.Add(time.Minute), UserEmail: "bob@example.com", DatasetName: "sales", Action: ActionDenied, Reason: gate_errors.ReasonPolicyViolation})
		j.Record(ctx, Entry{Timestamp: base.Add(2 * time.Minute), UserEmail: "alice@example.com", DatasetName: "finance", Action: ActionGranted})

		assert.Len(t, j.Query("", "", time.Time{}), 3)
		assert.Len(t, j.Query("alice@example.com", "", time.Time{}), 2)
		assert.Len(t, j.Query("", "sales", time.Time{}), 2)
		assert.Len(t, j.Query("alice@example.com", "finance", time.Time{}), 1)
		assert.Len(t, j.Query("", "", base.Add(90*time.Second)), 1)

		denied := j.Query("bob@example.com", "", time.Time{})
		require.Len(t, denied, 1)
		assert.Equal(t, gate_errors.ReasonPolicyViolation, denied[0].Reason)
	})

	t.Run("CompactsPastHighWater", func(t *testing.T) {
		j := NewJournal(nil)
		for i := 0; i <= defaultHighWater; i++ {
			j.Record(ctx, Entry{Timestamp: base.Add(time.Duration(i) * time.Second), Action: ActionGranted})
		}

		assert.Equal(t, compactKeep, j.Len())

		// The survivors are the most recent entries.
		kept := j.Query("", "", time.Time{})
		assert.Equal(t, base.Add(time.Duration(defaultHighWater-compactKeep+1)*time.Second), kept[0].Timestamp)
		assert.Equal(t, base.Add(time.Duration(defaultHighWater)*time.Second), kept[len(kept)-1].Timestamp)
	})

	t.Run("PruneDropsOldEntries", func(t *testing.T) {
		j := NewJournal(nil)
		for i := 0; i < 10; i++ {
			j.Record(ctx, Entry{Timestamp: base.Add(time.Duration(i) * time.Hour), Action: ActionGranted})
		}

		removed := j.Prune(base.Add(4 * time.Hour))
		assert.Equal(t, 5, removed)
		assert.Equal(t, 5, j.Len())
		assert.Equal(t, 0, j.Prune(base.Add(4*time.Hour)))
	})
}
