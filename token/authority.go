// api/token/authority.go
package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/policy"
	"github.com/dev-mohitbeniwal/datagate/api/ratelimit"
	"github.com/dev-mohitbeniwal/datagate/api/storage"
)

const tokensDocument = "active_tokens.json"

// IAuthority is the token authority surface consumed by the transport shims.
type IAuthority interface {
	Issue(ctx context.Context, userEmail string, datasets, permissions []string, expiresIn time.Duration) (string, error)
	Verify(ctx context.Context, credential, datasetName string) (bool, gate_errors.Reason)
	Revoke(ctx context.Context, tokenID string) bool
}

// Authority issues, verifies, and revokes scoped bearer credentials. It
// exclusively owns the token registry; the policy store and rate limiter
// are read-side collaborators consulted during verification.
type Authority struct {
	mu         sync.Mutex
	tokens     map[string]*model.AccessToken
	signingKey []byte
	policies   *policy.Store
	limiter    *ratelimit.Limiter
	auditor    audit.Service
	storage    *storage.Store
	defaultTTL time.Duration
	now        func() time.Time
}

// NewAuthority creates the authority and reloads the persisted registry,
// keeping only tokens that have not yet expired.
func NewAuthority(signingKey []byte, policies *policy.Store, limiter *ratelimit.Limiter,
	auditor audit.Service, st *storage.Store, defaultTTL time.Duration) (*Authority, error) {
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("%w: signing key material unavailable", gate_errors.ErrConfig)
	}

	a := &Authority{
		tokens:     make(map[string]*model.AccessToken),
		signingKey: signingKey,
		policies:   policies,
		limiter:    limiter,
		auditor:    auditor,
		storage:    st,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}

	var loaded []*model.AccessToken
	found, err := st.Load(tokensDocument, &loaded)
	if err != nil {
		return nil, err
	}
	if found {
		now := a.now()
		for _, t := range loaded {
			if !t.Expired(now) {
				a.tokens[t.TokenID] = t
			}
		}
		logger.Debug("Loaded active tokens", zap.Int("count", len(a.tokens)))
	}
	return a, nil
}

// Issue creates a token scoped to the given datasets and permission set and
// returns the signed credential. The registry insert happens before the
// credential is encoded, so a signed credential always has a registry entry
// behind it.
func (a *Authority) Issue(ctx context.Context, userEmail string, datasets, permissions []string, expiresIn time.Duration) (string, error) {
	if userEmail == "" {
		return "", fmt.Errorf("%w: user email must not be empty", gate_errors.ErrInvalidRequestData)
	}
	if len(datasets) == 0 {
		return "", fmt.Errorf("%w: token scope must name at least one dataset", gate_errors.ErrInvalidRequestData)
	}
	if len(permissions) == 0 {
		permissions = []string{"read"}
	}
	if expiresIn <= 0 {
		expiresIn = a.defaultTTL
	}

	now := a.now()
	accessToken := &model.AccessToken{
		TokenID:     newTokenID(),
		UserEmail:   userEmail,
		Permissions: permissions,
		Datasets:    datasets,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiresIn),
	}

	a.mu.Lock()
	a.tokens[accessToken.TokenID] = accessToken
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	a.auditor.Record(ctx, audit.Entry{
		Timestamp:   now,
		UserEmail:   userEmail,
		DatasetName: model.WildcardDataset,
		Action:      audit.ActionIssued,
		TokenID:     accessToken.TokenID,
		Details: map[string]string{
			"datasets":    fmt.Sprintf("%v", datasets),
			"permissions": fmt.Sprintf("%v", permissions),
		},
	})

	if err := a.storage.Save(tokensDocument, snapshot); err != nil {
		logger.Error("Failed to persist token registry", zap.Error(err))
	}

	credential, err := encodeCredential(a.signingKey, accessToken)
	if err != nil {
		a.mu.Lock()
		delete(a.tokens, accessToken.TokenID)
		a.mu.Unlock()
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}

	logger.Info("Issued access token",
		zap.String("user", userEmail),
		zap.String("tokenID", accessToken.TokenID),
		zap.Time("expiresAt", accessToken.ExpiresAt))
	return credential, nil
}

// Verify runs the fail-closed check chain against a presented credential.
// The first failing check denies; every outcome appends exactly one audit
// entry carrying its reason. Internal failures deny rather than propagate.
func (a *Authority) Verify(ctx context.Context, credential, datasetName string) (allowed bool, reason gate_errors.Reason) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Verification panicked", zap.Any("panic", r))
			a.deny(ctx, "unknown", datasetName, "", gate_errors.ReasonInternalError)
			allowed, reason = false, gate_errors.ReasonInternalError
		}
	}()

	// 1. Rate check, keyed on the raw credential.
	if !a.limiter.Allow(ratelimit.CredentialKey(credential)) {
		logger.Warn("Rate limit exceeded for credential")
		a.deny(ctx, "unknown", datasetName, "", gate_errors.ReasonRateLimited)
		return false, gate_errors.ReasonRateLimited
	}

	// 2. Signature and structure.
	claims, err := decodeCredential(a.signingKey, credential)
	if err != nil {
		logger.Warn("Invalid credential presented", zap.Error(err))
		a.deny(ctx, "unknown", datasetName, "", gate_errors.ReasonInvalidToken)
		return false, gate_errors.ReasonInvalidToken
	}

	a.mu.Lock()

	// 3. Registry: absence covers revocation and registry loss alike.
	accessToken, ok := a.tokens[claims.TokenID]
	if !ok {
		a.mu.Unlock()
		logger.Warn("Token not found in registry", zap.String("tokenID", claims.TokenID))
		a.deny(ctx, claims.UserEmail, datasetName, claims.TokenID, gate_errors.ReasonTokenNotFound)
		return false, gate_errors.ReasonTokenNotFound
	}

	// 4. Expiry: evict so the idempotent re-check hits the registry miss path.
	now := a.now()
	if accessToken.Expired(now) {
		delete(a.tokens, claims.TokenID)
		snapshot := a.snapshotLocked()
		a.mu.Unlock()
		if err := a.storage.Save(tokensDocument, snapshot); err != nil {
			logger.Error("Failed to persist token registry", zap.Error(err))
		}
		logger.Warn("Token expired", zap.String("tokenID", claims.TokenID))
		a.deny(ctx, claims.UserEmail, datasetName, claims.TokenID, gate_errors.ReasonTokenExpired)
		return false, gate_errors.ReasonTokenExpired
	}

	// 5. Scope.
	if !accessToken.AllowsDataset(datasetName) {
		a.mu.Unlock()
		logger.Warn("Dataset outside token scope",
			zap.String("dataset", datasetName),
			zap.String("user", claims.UserEmail))
		a.deny(ctx, claims.UserEmail, datasetName, claims.TokenID, gate_errors.ReasonDatasetNotAllowed)
		return false, gate_errors.ReasonDatasetNotAllowed
	}

	// 6. Per-dataset policy.
	if p, exists := a.policies.Lookup(datasetName); exists && !p.AllowsUser(claims.UserEmail) {
		a.mu.Unlock()
		a.deny(ctx, claims.UserEmail, datasetName, claims.TokenID, gate_errors.ReasonPolicyViolation)
		return false, gate_errors.ReasonPolicyViolation
	}

	// 7. Success: record usage.
	accessToken.UsageCount++
	used := now
	accessToken.LastUsed = &used
	a.mu.Unlock()

	a.auditor.Record(ctx, audit.Entry{
		Timestamp:   now,
		UserEmail:   claims.UserEmail,
		DatasetName: datasetName,
		Action:      audit.ActionGranted,
		TokenID:     claims.TokenID,
	})
	logger.Debug("Access granted",
		zap.String("dataset", datasetName),
		zap.String("user", claims.UserEmail))
	return true, gate_errors.ReasonNone
}

// Revoke removes a token from the registry and persists. It reports whether
// a token was actually removed.
func (a *Authority) Revoke(ctx context.Context, tokenID string) bool {
	a.mu.Lock()
	accessToken, ok := a.tokens[tokenID]
	if !ok {
		a.mu.Unlock()
		return false
	}
	delete(a.tokens, tokenID)
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	a.auditor.Record(ctx, audit.Entry{
		Timestamp:   a.now(),
		UserEmail:   accessToken.UserEmail,
		DatasetName: model.WildcardDataset,
		Action:      audit.ActionRevoked,
		TokenID:     tokenID,
	})
	if err := a.storage.Save(tokensDocument, snapshot); err != nil {
		logger.Error("Failed to persist token registry", zap.Error(err))
	}
	logger.Info("Revoked token", zap.String("tokenID", tokenID))
	return true
}

// SweepExpired removes every token past its expiry, persisting only when
// something was removed. Removal is atomic with respect to concurrent
// verification: a verify that observes a token gone treats it as never
// having existed.
func (a *Authority) SweepExpired(ctx context.Context) int {
	now := a.now()

	a.mu.Lock()
	var removed int
	for id, t := range a.tokens {
		if t.Expired(now) {
			delete(a.tokens, id)
			removed++
		}
	}
	var snapshot []*model.AccessToken
	if removed > 0 {
		snapshot = a.snapshotLocked()
	}
	a.mu.Unlock()

	if removed > 0 {
		if err := a.storage.Save(tokensDocument, snapshot); err != nil {
			logger.Error("Failed to persist token registry", zap.Error(err))
		}
		logger.Info("Cleaned up expired tokens", zap.Int("count", removed))
	}
	return removed
}

// ActiveTokens reports the current registry size.
func (a *Authority) ActiveTokens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tokens)
}

func (a *Authority) deny(ctx context.Context, userEmail, datasetName, tokenID string, reason gate_errors.Reason) {
	a.auditor.Record(ctx, audit.Entry{
		Timestamp:   a.now(),
		UserEmail:   userEmail,
		DatasetName: datasetName,
		Action:      audit.ActionDenied,
		TokenID:     tokenID,
		Reason:      reason,
	})
}

func (a *Authority) snapshotLocked() []*model.AccessToken {
	out := make([]*model.AccessToken, 0, len(a.tokens))
	for _, t := range a.tokens {
		out = append(out, t)
	}
	return out
}
