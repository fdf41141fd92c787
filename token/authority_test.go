// api/token/authority_test.go
package token

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/policy"
	"github.com/dev-mohitbeniwal/datagate/api/ratelimit"
	"github.com/dev-mohitbeniwal/datagate/api/storage"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

type authorityFixture struct {
	authority *Authority
	journal   *audit.Journal
	policies  *policy.Store
	storage   *storage.Store
	clock     *fakeClock
}

func newAuthorityFixture(t *testing.T, rateLimit int) *authorityFixture {
	t.Helper()

	clock := &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	st, err := storage.New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	policies, err := policy.NewStore(st)
	require.NoError(t, err)
	journal := audit.NewJournal(nil)
	limiter := ratelimit.NewWithClock(rateLimit, time.Minute, clock.Now)

	authority, err := NewAuthority([]byte("test-signing-key"), policies, limiter, journal, st, time.Hour)
	require.NoError(t, err)
	authority.now = clock.Now

	return &authorityFixture{
		authority: authority,
		journal:   journal,
		policies:  policies,
		storage:   st,
		clock:     clock,
	}
}

func TestAuthority(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	ctx := context.Background()

	t.Run("IssueAndVerify_Success", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, 0)
		require.NoError(t, err)
		require.NotEmpty(t, credential)
		assert.Equal(t, 1, f.authority.ActiveTokens())

		allowed, reason := f.authority.Verify(ctx, credential, "sales")
		assert.True(t, allowed)
		assert.Equal(t, gate_errors.ReasonNone, reason)

		granted := f.journal.Query("alice@example.com", "sales", time.Time{})
		require.Len(t, granted, 1)
		assert.Equal(t, audit.ActionGranted, granted[0].Action)
	})

	t.Run("Issue_RejectsEmptyRequest", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		_, err := f.authority.Issue(ctx, "", []string{"sales"}, nil, 0)
		assert.ErrorIs(t, err, gate_errors.ErrInvalidRequestData)

		_, err = f.authority.Issue(ctx, "alice@example.com", nil, nil, 0)
		assert.ErrorIs(t, err, gate_errors.ErrInvalidRequestData)
	})

	t.Run("Verify_MalformedCredential", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		allowed, reason := f.authority.Verify(ctx, "not-a-credential", "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonInvalidToken, reason)
	})

	t.Run("Verify_WrongSigningKey", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)
		other := newAuthorityFixture(t, 60)
		other.authority.signingKey = []byte("some-other-key")

		credential, err := other.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, 0)
		require.NoError(t, err)

		allowed, reason := f.authority.Verify(ctx, credential, "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonInvalidToken, reason)
	})

	t.Run("Verify_ExpiredTokenEvicted", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, time.Minute)
		require.NoError(t, err)

		f.clock.Advance(2 * time.Minute)

		allowed, reason := f.authority.Verify(ctx, credential, "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonTokenExpired, reason)
		assert.Equal(t, 0, f.authority.ActiveTokens())

		// The eviction makes the re-check a registry miss.
		allowed, reason = f.authority.Verify(ctx, credential, "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonTokenNotFound, reason)
	})

	t.Run("Verify_RevokedToken", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, 0)
		require.NoError(t, err)
		claims, err := decodeCredential(f.authority.signingKey, credential)
		require.NoError(t, err)

		assert.True(t, f.authority.Revoke(ctx, claims.TokenID))
		assert.False(t, f.authority.Revoke(ctx, claims.TokenID))

		entries := f.journal.Query("alice@example.com", "", time.Time{})
		require.Len(t, entries, 2)
		assert.Equal(t, audit.ActionRevoked, entries[1].Action)

		allowed, reason := f.authority.Verify(ctx, credential, "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonTokenNotFound, reason)
	})

	t.Run("Verify_DatasetOutsideScope", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, 0)
		require.NoError(t, err)

		allowed, reason := f.authority.Verify(ctx, credential, "finance")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonDatasetNotAllowed, reason)

		denied := f.journal.Query("alice@example.com", "finance", time.Time{})
		require.Len(t, denied, 1)
		assert.Equal(t, audit.ActionDenied, denied[0].Action)
		assert.Equal(t, gate_errors.ReasonDatasetNotAllowed, denied[0].Reason)
	})

	t.Run("Verify_WildcardScopeStillSubjectToPolicy", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		require.NoError(t, f.policies.Upsert(model.AccessPolicy{
			DatasetName:  "finance",
			OwnerEmail:   "owner@example.com",
			AllowedUsers: []string{"bob@example.com"},
		}))

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"*"}, nil, 0)
		require.NoError(t, err)

		allowed, reason := f.authority.Verify(ctx, credential, "finance")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonPolicyViolation, reason)

		// A dataset without a policy stays open to the wildcard scope.
		allowed, reason = f.authority.Verify(ctx, credential, "sales")
		assert.True(t, allowed)
		assert.Equal(t, gate_errors.ReasonNone, reason)
	})

	t.Run("Verify_RateLimited", func(t *testing.T) {
		f := newAuthorityFixture(t, 2)

		credential, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, 0)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			allowed, _ := f.authority.Verify(ctx, credential, "sales")
			assert.True(t, allowed)
		}
		allowed, reason := f.authority.Verify(ctx, credential, "sales")
		assert.False(t, allowed)
		assert.Equal(t, gate_errors.ReasonRateLimited, reason)

		// The window slides; an old slot freeing up readmits the caller.
		f.clock.Advance(61 * time.Second)
		allowed, reason = f.authority.Verify(ctx, credential, "sales")
		assert.True(t, allowed)
		assert.Equal(t, gate_errors.ReasonNone, reason)
	})

	t.Run("Registry_SurvivesRestart", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		_, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, time.Hour)
		require.NoError(t, err)
		_, err = f.authority.Issue(ctx, "bob@example.com", []string{"finance"}, nil, time.Minute)
		require.NoError(t, err)

		f.clock.Advance(30 * time.Minute)

		reloaded, err := NewAuthority(f.authority.signingKey, f.policies,
			ratelimit.NewWithClock(60, time.Minute, f.clock.Now), f.journal, f.storage, time.Hour)
		require.NoError(t, err)
		reloaded.now = f.clock.Now

		// Only the token still inside its lifetime is reloaded.
		assert.Equal(t, 1, reloaded.ActiveTokens())
	})

	t.Run("SweepExpired", func(t *testing.T) {
		f := newAuthorityFixture(t, 60)

		_, err := f.authority.Issue(ctx, "alice@example.com", []string{"sales"}, nil, time.Hour)
		require.NoError(t, err)
		_, err = f.authority.Issue(ctx, "bob@example.com", []string{"finance"}, nil, time.Minute)
		require.NoError(t, err)

		f.clock.Advance(10 * time.Minute)

		assert.Equal(t, 1, f.authority.SweepExpired(ctx))
		assert.Equal(t, 1, f.authority.ActiveTokens())
		assert.Equal(t, 0, f.authority.SweepExpired(ctx))
	})
}

func TestLoadSigningKey(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("GeneratesOnFirstStart", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		key, err := LoadSigningKey(fs, "keys/jwt_secret.key")
		require.NoError(t, err)
		assert.NotEmpty(t, key)

		again, err := LoadSigningKey(fs, "keys/jwt_secret.key")
		require.NoError(t, err)
		assert.Equal(t, key, again)
	})

	t.Run("RejectsEmptyKeyFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "keys/jwt_secret.key", []byte("  \n"), 0o600))

		_, err := LoadSigningKey(fs, "keys/jwt_secret.key")
		assert.ErrorIs(t, err, gate_errors.ErrConfig)
	})
}
