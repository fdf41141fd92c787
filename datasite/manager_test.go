// api/datasite/manager_test.go
package datasite_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/datagate/api/datasite"
	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/store"
)

func newTestManager(t *testing.T, fs afero.Fs) *datasite.Manager {
	t.Helper()
	content, err := store.NewFileStore(fs, "data/content")
	require.NoError(t, err)
	manager, err := datasite.NewManager(fs, "datasites/owner@example.com", "owner@example.com", content)
	require.NoError(t, err)
	return manager
}

func TestManager(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	ctx := context.Background()

	t.Run("AddAndGetContent", func(t *testing.T) {
		manager := newTestManager(t, afero.NewMemMapFs())

		meta, err := manager.AddContent(ctx, "sales", []byte("a,b,c"), "text/csv", "quarterly numbers", []string{"finance"})
		require.NoError(t, err)
		assert.Equal(t, "sales", meta.Name)
		assert.Equal(t, 5, meta.Size)
		assert.Equal(t, "private", meta.AccessLevel)
		assert.Equal(t, "owner@example.com", meta.OwnerEmail)

		content, err := manager.GetContent(ctx, "sales")
		require.NoError(t, err)
		assert.Equal(t, []byte("a,b,c"), content)

		assert.Len(t, manager.ListDatasets(), 1)
	})

	t.Run("AddContent_RejectsEmptyName", func(t *testing.T) {
		manager := newTestManager(t, afero.NewMemMapFs())

		_, err := manager.AddContent(ctx, "", nil, "", "", nil)
		assert.ErrorIs(t, err, gate_errors.ErrInvalidRequestData)
	})

	t.Run("MetadataSurvivesRestart", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		manager := newTestManager(t, fs)

		_, err := manager.AddContent(ctx, "sales", []byte("a,b,c"), "text/csv", "", nil)
		require.NoError(t, err)

		reloaded := newTestManager(t, fs)
		assert.Len(t, reloaded.ListDatasets(), 1)
	})

	t.Run("CleanupOrphans", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content, err := store.NewFileStore(fs, "data/content")
		require.NoError(t, err)
		manager, err := datasite.NewManager(fs, "datasites/owner@example.com", "owner@example.com", content)
		require.NoError(t, err)

		_, err = manager.AddContent(ctx, "sales", []byte("a,b,c"), "text/csv", "", nil)
		require.NoError(t, err)
		_, err = manager.AddContent(ctx, "finance", []byte("x,y"), "text/csv", "", nil)
		require.NoError(t, err)

		// Drop one dataset's bytes behind the manager's back.
		require.NoError(t, content.Delete(ctx, "sales"))

		assert.Equal(t, 1, manager.CleanupOrphans(ctx))
		assert.Len(t, manager.ListDatasets(), 1)
		assert.Equal(t, 0, manager.CleanupOrphans(ctx))
	})

	t.Run("RemoveContent", func(t *testing.T) {
		manager := newTestManager(t, afero.NewMemMapFs())

		_, err := manager.AddContent(ctx, "sales", []byte("a,b,c"), "text/csv", "", nil)
		require.NoError(t, err)
		require.NoError(t, manager.RemoveContent(ctx, "sales"))

		assert.Empty(t, manager.ListDatasets())
		_, err = manager.GetContent(ctx, "sales")
		assert.ErrorIs(t, err, gate_errors.ErrContentNotFound)
	})
}
