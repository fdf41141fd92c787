// api/model/session.go
package model

import "time"

// AppSession is a medium-lived handle for a caller's identity. The verdict
// cache amortizes oracle queries for the session's lifetime.
type AppSession struct {
	SessionID        string    `json:"session_id"`
	UserEmail        string    `json:"user_email"`
	ClientIdentifier string    `json:"client_identifier"`
	CreatedAt        time.Time `json:"created_at"`
	LastActive       time.Time `json:"last_active"`

	verdicts map[string]pathVerdict
}

// pathVerdict records what is known about one path. Grants and denials are
// both monotone along the permission ladder: a grant at level L implies a
// grant at every level below it, a denial at L implies a denial above it.
type pathVerdict struct {
	maxGranted PermissionLevel
	minDenied  PermissionLevel
	denied     bool
}

// NewAppSession creates a session with an empty verdict cache.
func NewAppSession(sessionID, userEmail, clientIdentifier string, now time.Time) *AppSession {
	return &AppSession{
		SessionID:        sessionID,
		UserEmail:        userEmail,
		ClientIdentifier: clientIdentifier,
		CreatedAt:        now,
		LastActive:       now,
		verdicts:         make(map[string]pathVerdict),
	}
}

// Expired reports whether the session has been idle longer than the timeout.
func (s *AppSession) Expired(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastActive) > idleTimeout
}

// Touch refreshes the last-active instant.
func (s *AppSession) Touch(now time.Time) {
	s.LastActive = now
}

// CachedVerdict looks up a previous verdict for the path at the given level.
// The second result reports whether the cache could answer.
func (s *AppSession) CachedVerdict(path string, level PermissionLevel) (bool, bool) {
	v, ok := s.verdicts[path]
	if !ok {
		return false, false
	}
	if v.maxGranted >= level && v.maxGranted > PermissionNone {
		return true, true
	}
	if v.denied && level >= v.minDenied {
		return false, true
	}
	return false, false
}

// CacheVerdict records an oracle verdict for the path at the given level.
func (s *AppSession) CacheVerdict(path string, level PermissionLevel, allowed bool) {
	if s.verdicts == nil {
		s.verdicts = make(map[string]pathVerdict)
	}
	v := s.verdicts[path]
	if allowed {
		if level > v.maxGranted {
			v.maxGranted = level
		}
	} else {
		if !v.denied || level < v.minDenied {
			v.minDenied = level
			v.denied = true
		}
	}
	s.verdicts[path] = v
}
