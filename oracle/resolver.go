// api/oracle/resolver.go
package oracle

import (
	"context"
	"path"
	"sync"

	"github.com/dev-mohitbeniwal/datagate/api/model"
)

// Resolver computes the effective permission level for a user at a path
// relative to the managed tree. The oracle is external: it is only queried,
// never mutated, and callers must treat any error as "unknown", not allow.
type Resolver interface {
	Resolve(ctx context.Context, userEmail, relPath string) (model.PermissionLevel, error)
}

// StaticResolver is an in-memory resolver for development and tests. Rules
// attach to paths; the most specific rule along the ancestor chain wins,
// with a "*" user acting as a fallback at each step.
type StaticResolver struct {
	mu     sync.RWMutex
	grants map[string]map[string]model.PermissionLevel
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		grants: make(map[string]map[string]model.PermissionLevel),
	}
}

// Grant attaches a rule at the path for the user ("*" for everyone).
func (r *StaticResolver) Grant(relPath, userEmail string, level model.PermissionLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clean := path.Clean(relPath)
	if r.grants[clean] == nil {
		r.grants[clean] = make(map[string]model.PermissionLevel)
	}
	r.grants[clean][userEmail] = level
}

func (r *StaticResolver) Resolve(_ context.Context, userEmail, relPath string) (model.PermissionLevel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for p := path.Clean(relPath); ; p = path.Dir(p) {
		if rules, ok := r.grants[p]; ok {
			if level, ok := rules[userEmail]; ok {
				return level, nil
			}
			if level, ok := rules["*"]; ok {
				return level, nil
			}
		}
		if p == "." || p == "/" {
			break
		}
	}
	return model.PermissionNone, nil
}
