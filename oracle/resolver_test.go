// api/oracle/resolver_test.go
package oracle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/oracle"
)

func TestStaticResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("MostSpecificRuleWins", func(t *testing.T) {
		r := oracle.NewStaticResolver()
		r.Grant("alice@example.com", "bob@example.com", model.PermissionRead)
		r.Grant("alice@example.com/private", "bob@example.com", model.PermissionWrite)

		level, err := r.Resolve(ctx, "bob@example.com", "alice@example.com/private/report.csv")
		require.NoError(t, err)
		assert.Equal(t, model.PermissionWrite, level)

		level, err = r.Resolve(ctx, "bob@example.com", "alice@example.com/public/index.html")
		require.NoError(t, err)
		assert.Equal(t, model.PermissionRead, level)
	})

	t.Run("WildcardUserFallback", func(t *testing.T) {
		r := oracle.NewStaticResolver()
		r.Grant("alice@example.com/public", "*", model.PermissionRead)
		r.Grant("alice@example.com/public", "bob@example.com", model.PermissionWrite)

		level, err := r.Resolve(ctx, "bob@example.com", "alice@example.com/public")
		require.NoError(t, err)
		assert.Equal(t, model.PermissionWrite, level)

		level, err = r.Resolve(ctx, "carol@example.com", "alice@example.com/public")
		require.NoError(t, err)
		assert.Equal(t, model.PermissionRead, level)
	})

	t.Run("NoRuleMeansNone", func(t *testing.T) {
		r := oracle.NewStaticResolver()

		level, err := r.Resolve(ctx, "bob@example.com", "alice@example.com/private")
		require.NoError(t, err)
		assert.Equal(t, model.PermissionNone, level)
	})
}
