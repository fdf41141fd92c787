package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	"github.com/dev-mohitbeniwal/datagate/api/config"
	"github.com/dev-mohitbeniwal/datagate/api/controller"
	"github.com/dev-mohitbeniwal/datagate/api/datasite"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	mcpshim "github.com/dev-mohitbeniwal/datagate/api/mcp"
	"github.com/dev-mohitbeniwal/datagate/api/middleware"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/oracle"
	"github.com/dev-mohitbeniwal/datagate/api/policy"
	"github.com/dev-mohitbeniwal/datagate/api/ratelimit"
	"github.com/dev-mohitbeniwal/datagate/api/session"
	"github.com/dev-mohitbeniwal/datagate/api/storage"
	"github.com/dev-mohitbeniwal/datagate/api/store"
	"github.com/dev-mohitbeniwal/datagate/api/token"
	"github.com/dev-mohitbeniwal/datagate/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger("logging")
	defer logger.Sync()

	fs := afero.NewOsFs()

	// Load (or provision) the token signing key
	signingKey, err := token.LoadSigningKey(fs, config.GetString("auth.signingKeyFile"))
	if err != nil {
		logger.Fatal("Failed to load signing key", zap.Error(err))
	}

	// Durable registry state
	registryStore, err := storage.New(fs, config.GetString("storage.dataDir"))
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	policies, err := policy.NewStore(registryStore)
	if err != nil {
		logger.Fatal("Failed to load access policies", zap.Error(err))
	}

	// Audit trail: in-memory journal, optionally mirrored to Elasticsearch
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Warn("Elasticsearch unavailable, audit entries stay local", zap.Error(err))
		auditRepository = nil
	}
	auditService := audit.NewJournal(auditRepository)

	limiter := ratelimit.New(config.GetInt("auth.maxRequestsPerMinute"), time.Minute)

	authority, err := token.NewAuthority(signingKey, policies, limiter, auditService,
		registryStore, config.GetDuration("auth.tokenExpiry"))
	if err != nil {
		logger.Fatal("Failed to initialize token authority", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := token.NewSweeper(authority, auditService, config.GetDuration("auth.auditRetention"))
	sweeper.Start(ctx)

	// Initialize EventBus
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	notificationService := util.NewNotificationService()
	eventBus.Subscribe("policy.upserted", func(ctx context.Context, ev util.Event) error {
		p, ok := ev.Payload.(model.AccessPolicy)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", ev.Type)
		}
		return notificationService.NotifyPolicyChange(ctx, "updated", p)
	})
	eventBus.Subscribe("token.revoked", func(ctx context.Context, ev util.Event) error {
		tokenID, ok := ev.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", ev.Type)
		}
		return notificationService.NotifyTokenRevoked(ctx, tokenID)
	})

	// Dataset content store: Redis when reachable, local files otherwise
	var contentStore store.ByteStore
	redisStore, err := store.NewRedisStore(config.GetString("redis.addr"))
	if err != nil {
		logger.Warn("Redis unavailable, falling back to file content store", zap.Error(err))
		fileStore, ferr := store.NewFileStore(fs, filepath.Join(config.GetString("storage.dataDir"), "content"))
		if ferr != nil {
			logger.Fatal("Failed to initialize file content store", zap.Error(ferr))
		}
		contentStore = fileStore
	} else {
		defer redisStore.Close()
		contentStore = redisStore
	}

	// Permission oracle: Neo4j rule graph when reachable. The static
	// resolver fallback grants nothing, so non-owner access stays closed.
	var resolver oracle.Resolver
	neoResolver, err := oracle.NewNeo4jResolver(
		config.GetString("neo4j.uri"),
		config.GetString("neo4j.username"),
		config.GetString("neo4j.password"),
	)
	if err != nil {
		logger.Warn("Neo4j unavailable, only owner access will be granted", zap.Error(err))
		resolver = oracle.NewStaticResolver()
	} else {
		defer neoResolver.Close()
		resolver = neoResolver
	}

	proxy := session.NewProxy(resolver, fs,
		config.GetString("datasite.owner"),
		config.GetString("oracle.rootPath"),
		config.GetDuration("auth.sessionTimeout"),
		config.GetDuration("oracle.queryTimeout"))

	manager, err := datasite.NewManager(fs, config.GetString("datasite.path"),
		config.GetString("datasite.owner"), contentStore)
	if err != nil {
		logger.Fatal("Failed to initialize datasite", zap.Error(err))
	}
	go manager.RunMaintenance(ctx, time.Hour)

	// Initialize controllers
	tokenController := controller.NewTokenController(authority, auditService, policies, validationUtil, eventBus)
	sessionController := controller.NewSessionController(proxy, validationUtil)
	datasiteController := controller.NewDatasiteController(manager, authority)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(ratelimit.New(100, time.Minute), 100, time.Minute))

	// Register routes
	v1 := router.Group("/api/v1")
	tokenController.RegisterRoutes(v1)
	sessionController.RegisterRoutes(v1)
	datasiteController.RegisterRoutes(v1)

	// Set up the servers
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: router,
	}

	mcpServer := mcpshim.NewServer(authority, proxy)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if _, err := mcpServer.Start(config.GetString("mcp.addr")); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal to gracefully shut down the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-groupCtx.Done():
	}
	logger.Info("Shutting down server...")
	cancel()

	// The context is used to inform the servers they have 5 seconds to
	// finish the requests they are currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := mcpServer.Stop(shutdownCtx); err != nil {
		logger.Error("MCP server forced to shutdown", zap.Error(err))
	}
	if err := group.Wait(); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}

	logger.Info("Server exiting")
}
