package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/helperkit/tagstore/handlers"
	"github.com/helperkit/tagstore/internal/config"
	"github.com/helperkit/tagstore/internal/database"
	"github.com/helperkit/tagstore/internal/editors"
	"github.com/helperkit/tagstore/internal/export"
	"github.com/helperkit/tagstore/internal/models"
	"github.com/helperkit/tagstore/internal/oidc"
	"github.com/helperkit/tagstore/internal/sessions"
	"github.com/helperkit/tagstore/internal/storage"
	taghandler "github.com/helperkit/tagstore/internal/tag/handler"
	tagrepo "github.com/helperkit/tagstore/internal/tag/repository"
	tagservice "github.com/helperkit/tagstore/internal/tag/service"
	"github.com/helperkit/tagstore/internal/tokens"
	"github.com/helperkit/tagstore/pkg/logger"
	"github.com/helperkit/tagstore/pkg/metrics"
	"github.com/helperkit/tagstore/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early so the rate limiter and token blacklist can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			middleware.SetBlacklistCheck(sessions.IsAccessTokenBlacklisted)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-editor when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// shared runtime vars used by handlers/readiness
	var (
		verifier    middleware.Verifier
		tagSvc      *tagservice.Service
		editorSvc   *editors.Service
		sessionsSvc *sessions.Service
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness — 200 only when the tag store itself is usable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["tags"] = tagSvc != nil
		if tagSvc == nil {
			ready = false
		}
		deps["sessions"] = sessionsSvc != nil
		deps["editors"] = editorSvc != nil

		if cfg.OIDC.Issuer != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	// Token verifier: SSO (OIDC) when configured, otherwise locally issued
	// HMAC tokens signed with JWT_SECRET.
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		if os.Getenv("ALLOW_INSECURE_TOKEN") == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		} else {
			verifier = tokens.NewHMACVerifier(cfg.Auth.JWTSecret)
		}
	}

	// Prefer Redis-backed refresh sessions when available
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB: tags, editors, export jobs, and sessions fallback.
	// Retry with backoff to tolerate startup races.
	var client *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			client = nil
		}
	}

	var (
		tagRepo  tagrepo.Repository
		jobStore export.JobStore = export.NewMemoryJobStore()
	)
	if client != nil {
		defer func() { _ = client.Disconnect(ctx) }()
		db := client.Database(cfg.MongoDB.Database)

		tagRepo = tagrepo.NewMongoRepo(db.Collection("tags"))
		editorSvc = editors.NewService(editors.NewMongoEditorRepository(db.Collection("editors")))
		if sessionsSvc == nil {
			sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
		}
		jobStore = export.NewMongoJobStore(db.Collection("export_jobs"))
	} else {
		logger.Warnf("MongoDB unavailable; falling back to in-memory tag store")
		tagRepo = tagrepo.NewMemoryRepo()
	}
	tagSvc = tagservice.New(tagRepo)

	// Seed the bootstrap editor so a fresh deployment has one helper login
	if editorSvc != nil {
		if _, err := editorSvc.EnsureBootstrap(ctx, cfg.Auth.BootstrapEditor, cfg.Auth.BootstrapPassword); err != nil {
			logger.Warnf("failed to seed bootstrap editor: %v", err)
		}
	}

	protect := []gin.HandlerFunc{
		middleware.AuthMiddleware(verifier),
		middleware.RequireRole(models.RoleHelper),
	}

	taghandler.RegisterTagRoutes(r, tagSvc, protect...)
	// the gateway authenticates the chat front-end; end-user helper status
	// is resolved by the front-end and carried in the request body
	handlers.NewCommandHandler(tagSvc).Register(r.Group("/"), middleware.AuthMiddleware(verifier))
	handlers.RegisterSwagger(r)

	if editorSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, editorSvc, sessionsSvc).Register(r.Group("/"))
	} else {
		logger.Warnf("auth routes not registered because editor/session services are unavailable")
	}

	// Export snapshots need object storage; skip the routes when MinIO is not configured
	minioCfg := storage.LoadMinIOConfig()
	if minioCfg.Endpoint != "" {
		store, err := storage.NewMinIOStorage(minioCfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			exportSvc := export.NewService(tagRepo, store, jobStore)
			handlers.NewExportHandler(exportSvc).Register(r.Group("/"), protect...)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Debugf("services: tags=%v editors=%v sessions=%v verifier=%v", tagSvc != nil, editorSvc != nil, sessionsSvc != nil, verifier != nil)
	logger.Infof("Starting tagstore on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
