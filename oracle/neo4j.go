// api/oracle/neo4j.go
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
)

// Neo4jResolver answers permission queries from a graph of AccessRule nodes.
// A rule carries a path prefix, a user (or "*"), and a level name; the
// effective permission is the level of the most specific rule whose prefix
// covers the queried path.
type Neo4jResolver struct {
	driver neo4j.Driver
}

// NewNeo4jResolver connects to the oracle database and verifies connectivity.
func NewNeo4jResolver(uri, username, password string) (*Neo4jResolver, error) {
	driver, err := neo4j.NewDriver(
		uri,
		neo4j.BasicAuth(username, password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.MaxConnectionPoolSize = 50
			c.Log = neo4j.ConsoleLogger(neo4j.ERROR)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(); err != nil {
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	logger.Info("Connected to permission oracle", zap.String("uri", uri))
	return &Neo4jResolver{driver: driver}, nil
}

func (r *Neo4jResolver) Resolve(ctx context.Context, userEmail, relPath string) (model.PermissionLevel, error) {
	session := r.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:AccessRule)
        WHERE (r.user = $user OR r.user = '*')
          AND ($path = r.path OR $path STARTS WITH r.path + '/')
        RETURN r.level AS level
        ORDER BY size(r.path) DESC
        LIMIT 1
        `
		res, err := tx.Run(query, map[string]interface{}{
			"user": userEmail,
			"path": relPath,
		})
		if err != nil {
			return nil, err
		}
		if res.Next() {
			level, _ := res.Record().Get("level")
			return level, nil
		}
		return nil, res.Err()
	})
	if err != nil {
		return model.PermissionNone, fmt.Errorf("oracle query failed: %w", err)
	}

	if result == nil {
		return model.PermissionNone, nil
	}
	name, ok := result.(string)
	if !ok {
		return model.PermissionNone, fmt.Errorf("oracle returned non-string level: %T", result)
	}
	level, err := model.ParsePermissionLevel(name)
	if err != nil {
		return model.PermissionNone, err
	}
	return level, nil
}

// Close releases the underlying driver.
func (r *Neo4jResolver) Close() {
	if err := r.driver.Close(); err != nil {
		logger.Error("Error closing Neo4j connection", zap.Error(err))
	}
}
