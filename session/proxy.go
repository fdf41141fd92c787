// api/session/proxy.go
package session

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/oracle"
)

// IProxy is the session surface consumed by the transport shims.
type IProxy interface {
	CreateSession(userEmail, clientIdentifier string) string
	CheckPermission(ctx context.Context, sessionID, targetPath string, level model.PermissionLevel) bool
	ListAccessibleRoots(ctx context.Context, sessionID string) []RootInfo
	CleanupExpiredSessions() int
}

// RootInfo describes a datasite root accessible to a session.
type RootInfo struct {
	Email      string `json:"email"`
	Path       string `json:"path"`
	HasPublic  bool   `json:"has_public"`
	HasPrivate bool   `json:"has_private"`
}

// Proxy resolves per-session capability against the external permission
// oracle, caching verdicts for the session's lifetime. It exclusively owns
// the session table. Oracle failures degrade to the owner-equality check,
// never to a blanket allow.
type Proxy struct {
	mu       sync.Mutex
	sessions map[string]*model.AppSession

	resolver     oracle.Resolver
	fs           afero.Fs
	ownerEmail   string
	rootPath     string
	idleTimeout  time.Duration
	queryTimeout time.Duration
	now          func() time.Time
}

// NewProxy creates a proxy over the oracle-managed tree rooted at rootPath.
// ownerEmail identifies the datasite owner, who bypasses the oracle.
func NewProxy(resolver oracle.Resolver, fs afero.Fs, ownerEmail, rootPath string,
	idleTimeout, queryTimeout time.Duration) *Proxy {
	return &Proxy{
		sessions:     make(map[string]*model.AppSession),
		resolver:     resolver,
		fs:           fs,
		ownerEmail:   ownerEmail,
		rootPath:     rootPath,
		idleTimeout:  idleTimeout,
		queryTimeout: queryTimeout,
		now:          time.Now,
	}
}

// CreateSession allocates a session with an empty verdict cache.
func (p *Proxy) CreateSession(userEmail, clientIdentifier string) string {
	sessionID := uuid.New().String()
	s := model.NewAppSession(sessionID, userEmail, clientIdentifier, p.now())

	p.mu.Lock()
	p.sessions[sessionID] = s
	p.mu.Unlock()

	logger.Info("Created session",
		zap.String("sessionID", sessionID),
		zap.String("user", userEmail))
	return sessionID
}

// CheckPermission decides whether the session may act on the target path at
// the required level. Absent and expired sessions deny; expired sessions
// are evicted on sight.
func (p *Proxy) CheckPermission(ctx context.Context, sessionID, targetPath string, level model.PermissionLevel) bool {
	p.mu.Lock()
	s, ok := p.sessions[sessionID]
	if !ok {
		p.mu.Unlock()
		logger.Warn("Invalid session", zap.String("sessionID", sessionID))
		return false
	}

	now := p.now()
	if s.Expired(now, p.idleTimeout) {
		delete(p.sessions, sessionID)
		p.mu.Unlock()
		logger.Warn("Session expired", zap.String("sessionID", sessionID))
		return false
	}
	s.Touch(now)

	if verdict, hit := s.CachedVerdict(targetPath, level); hit {
		p.mu.Unlock()
		return verdict
	}

	userEmail := s.UserEmail
	p.mu.Unlock()

	// The owner of the tree needs no oracle.
	if userEmail == p.ownerEmail {
		logger.Debug("Owner access granted", zap.String("user", userEmail))
		return true
	}

	relPath, ok := p.relativeToRoot(targetPath)
	if !ok {
		logger.Warn("Path outside managed tree",
			zap.String("path", targetPath),
			zap.String("root", p.rootPath))
		return false
	}

	resolved, err := p.resolveWithRetry(ctx, userEmail, relPath)
	if err != nil {
		// Owner equality is the only fallback, and owners returned above.
		logger.Error("Oracle query failed, denying non-owner",
			zap.Error(err),
			zap.String("user", userEmail),
			zap.String("path", relPath))
		return false
	}

	allowed := resolved.Satisfies(level)
	if allowed {
		logger.Info("Permission granted",
			zap.String("user", userEmail),
			zap.String("path", relPath),
			zap.String("level", resolved.String()))
	} else {
		logger.Warn("Permission denied",
			zap.String("user", userEmail),
			zap.String("path", relPath),
			zap.String("have", resolved.String()),
			zap.String("need", level.String()))
	}

	p.mu.Lock()
	if s, ok := p.sessions[sessionID]; ok {
		s.CacheVerdict(targetPath, level, allowed)
	}
	p.mu.Unlock()
	return allowed
}

// ListAccessibleRoots returns every datasite root directory the session can
// read. Datasite roots are directories named by their owner's email.
func (p *Proxy) ListAccessibleRoots(ctx context.Context, sessionID string) []RootInfo {
	var accessible []RootInfo

	p.mu.Lock()
	_, ok := p.sessions[sessionID]
	p.mu.Unlock()
	if !ok {
		return accessible
	}

	entries, err := afero.ReadDir(p.fs, p.rootPath)
	if err != nil {
		logger.Error("Failed to list datasite roots", zap.Error(err))
		return accessible
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), "@") {
			continue
		}
		rootDir := filepath.Join(p.rootPath, entry.Name())
		if !p.CheckPermission(ctx, sessionID, rootDir, model.PermissionRead) {
			continue
		}
		hasPublic, _ := afero.DirExists(p.fs, filepath.Join(rootDir, "public"))
		hasPrivate, _ := afero.DirExists(p.fs, filepath.Join(rootDir, "private"))
		accessible = append(accessible, RootInfo{
			Email:      entry.Name(),
			Path:       rootDir,
			HasPublic:  hasPublic,
			HasPrivate: hasPrivate,
		})
	}
	return accessible
}

// CleanupExpiredSessions evicts every idle session and returns the count.
func (p *Proxy) CleanupExpiredSessions() int {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	var removed int
	for id, s := range p.sessions {
		if s.Expired(now, p.idleTimeout) {
			delete(p.sessions, id)
			removed++
			logger.Info("Cleaned up expired session", zap.String("sessionID", id))
		}
	}
	return removed
}

// ActiveSessions reports the current session count.
func (p *Proxy) ActiveSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// relativeToRoot computes the target's path under the oracle root, rejecting
// anything that escapes the managed tree.
func (p *Proxy) relativeToRoot(targetPath string) (string, bool) {
	rel, err := filepath.Rel(p.rootPath, targetPath)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// resolveWithRetry bounds the oracle query with the configured timeout and
// a short exponential backoff inside it.
func (p *Proxy) resolveWithRetry(ctx context.Context, userEmail, relPath string) (model.PermissionLevel, error) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	var level model.PermissionLevel
	operation := func() error {
		var err error
		level, err = p.resolver.Resolve(qctx, userEmail, relPath)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), qctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return model.PermissionNone, err
	}
	return level, nil
}
