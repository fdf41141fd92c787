// api/policy/store_test.go
package policy_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/policy"
	"github.com/dev-mohitbeniwal/datagate/api/storage"
)

func TestStore(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("UpsertAppliesDefaults", func(t *testing.T) {
		st, err := storage.New(afero.NewMemMapFs(), "data")
		require.NoError(t, err)
		store, err := policy.NewStore(st)
		require.NoError(t, err)

		require.NoError(t, store.Upsert(model.AccessPolicy{
			DatasetName: "sales",
			OwnerEmail:  "owner@example.com",
		}))

		p, ok := store.Lookup("sales")
		require.True(t, ok)
		assert.Equal(t, []string{"read"}, p.RequiredPermissions)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		st, err := storage.New(afero.NewMemMapFs(), "data")
		require.NoError(t, err)
		store, err := policy.NewStore(st)
		require.NoError(t, err)

		require.NoError(t, store.Upsert(model.AccessPolicy{
			DatasetName:  "sales",
			AllowedUsers: []string{"alice@example.com"},
		}))
		require.NoError(t, store.Upsert(model.AccessPolicy{
			DatasetName:  "sales",
			AllowedUsers: []string{"bob@example.com"},
		}))

		p, ok := store.Lookup("sales")
		require.True(t, ok)
		assert.Equal(t, []string{"bob@example.com"}, p.AllowedUsers)
		assert.Len(t, store.List(), 1)
	})

	t.Run("AbsentPolicyIsNotAnError", func(t *testing.T) {
		st, err := storage.New(afero.NewMemMapFs(), "data")
		require.NoError(t, err)
		store, err := policy.NewStore(st)
		require.NoError(t, err)

		_, ok := store.Lookup("unknown")
		assert.False(t, ok)
	})

	t.Run("SurvivesRestart", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		st, err := storage.New(fs, "data")
		require.NoError(t, err)
		store, err := policy.NewStore(st)
		require.NoError(t, err)

		require.NoError(t, store.Upsert(model.AccessPolicy{
			DatasetName:  "sales",
			OwnerEmail:   "owner@example.com",
			AllowedUsers: []string{"alice@example.com"},
		}))

		reloaded, err := policy.NewStore(st)
		require.NoError(t, err)

		p, ok := reloaded.Lookup("sales")
		require.True(t, ok)
		assert.Equal(t, "owner@example.com", p.OwnerEmail)
		assert.True(t, p.AllowsUser("alice@example.com"))
		assert.False(t, p.AllowsUser("bob@example.com"))
	})
}
