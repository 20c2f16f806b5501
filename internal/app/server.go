// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rbadmin/internal/config"
	"rbadmin/internal/db"
	auditHandler "rbadmin/internal/handlers/audit"
	authHandler "rbadmin/internal/handlers/auth"
	consoleHandler "rbadmin/internal/handlers/console"
	courseHandler "rbadmin/internal/handlers/courses"
	paymentHandler "rbadmin/internal/handlers/payments"
	settingsHandler "rbadmin/internal/handlers/settings"
	userHandler "rbadmin/internal/handlers/users"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/apiclient"
	"rbadmin/internal/pkg/jwt"
	"rbadmin/internal/pkg/session"
	"rbadmin/internal/pkg/tokenstore"
	"rbadmin/internal/repository/postgres"
	authUsecase "rbadmin/internal/service/auth"
	courseUsecase "rbadmin/internal/service/courses"
	paymentUsecase "rbadmin/internal/service/payments"
	settingsUsecase "rbadmin/internal/service/settings"
	userUsecase "rbadmin/internal/service/users"
)

const sweepInterval = time.Minute

type Server struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger

	redis  redis.UniversalClient
	pool   *pgxpool.Pool
	cancel context.CancelFunc
}

func NewServer(cfg *config.AppConfig) (*Server, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}, nil
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Build connects the optional backing stores and wires every component.
func (s *Server) Build(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	logger := s.logger

	guardScope, err := middleware.ParseScope(s.cfg.Guard.Scope)
	if err != nil {
		return err
	}

	// ----- Redis (persistent tier, rate limiter) -----
	var persistent tokenstore.Storage
	var limiter authUsecase.LoginLimiter
	if addrs := s.cfg.Redis.Addresses(); len(addrs) > 0 {
		client, err := db.NewRedis(ctx, db.RedisConfig{
			ClusterMode: s.cfg.Redis.Cluster,
			Addresses:   addrs,
			Password:    s.cfg.Redis.Pass,
			DB:          s.cfg.Redis.DB,
			PoolSize:    s.cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		s.redis = client
		persistent = tokenstore.NewRedisStorage(client, "console:")
		limiter = session.NewRateLimiter(client)
		logger.Info("redis connected", zap.Strings("addrs", addrs))
	} else {
		logger.Warn("REDIS_ADDR not set, remembered tokens live in memory and login is not rate limited")
	}

	// ----- PostgreSQL (audit trail) -----
	var audit authUsecase.AuditRecorder
	var auditReader auditHandler.Reader
	if s.cfg.DatabaseURL != "" {
		pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		s.pool = pool
		repo := postgres.NewAuditRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		audit, auditReader = repo, repo
		logger.Info("audit trail enabled")
	}

	// ----- Token store -----
	memory := tokenstore.NewMemoryStorage()
	go memory.RunSweeper(ctx, sweepInterval)
	store := tokenstore.New(persistent, memory, logger, tokenstore.WithSessionTTL(s.cfg.SessionTTL))

	// ----- Backend client -----
	api := apiclient.New(apiclient.Config{
		BaseURL:      s.cfg.API.BaseURL,
		RefreshPath:  s.cfg.API.RefreshPath,
		TenantHeader: s.cfg.API.TenantHeader,
		Timeout:      s.cfg.API.Timeout,
	}, logger)

	decoder, err := jwt.LoadDecoder(s.cfg.JWTPublicKeyPath)
	if err != nil {
		return err
	}

	resolver := session.NewResolver(session.Config{
		LoginPath:     s.cfg.Guard.LoginPath,
		ForbiddenPath: s.cfg.Guard.ForbiddenPath,
	})

	adminPrefix := strings.TrimRight(s.cfg.Guard.AdminPrefix, "/")
	if adminPrefix == "" {
		adminPrefix = "/admin"
	}

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(api, decoder, authUsecase.Options{
		Limiter:         limiter,
		Audit:           audit,
		DefaultRedirect: s.cfg.DefaultRedirect,
	}, logger)
	userService := userUsecase.NewUserService(api, logger)
	courseService := courseUsecase.NewCourseService(api, logger)
	paymentService := paymentUsecase.NewPaymentService(api, logger)
	settingsService := settingsUsecase.NewSettingsService(api, logger)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authService, store, resolver, logger),
		ConsoleHandler:  consoleHandler.NewConsoleHandler(adminPrefix, logger),
		UserHandler:     userHandler.NewUserHandler(userService, logger),
		CourseHandler:   courseHandler.NewCourseHandler(courseService, logger),
		PaymentHandler:  paymentHandler.NewPaymentHandler(paymentService, logger),
		SettingsHandler: settingsHandler.NewSettingsHandler(settingsService, logger),
		AuditHandler:    auditHandler.NewAuditHandler(auditReader, logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(store, logger),
		Resolver:        resolver,
	}
	SetupRouter(s.engine, logger, RouterConfig{
		Guard: middleware.GuardConfig{
			Scope:         guardScope,
			AdminPrefix:   adminPrefix,
			LoginPath:     resolver.LoginPath(),
			ForbiddenPath: resolver.ForbiddenPath(),
			AssetPrefix:   s.cfg.Guard.AssetPrefix,
			FaviconPath:   "/favicon.ico",
			APIPrefix:     adminPrefix + "/api",
		},
		DefaultRedirect: s.cfg.DefaultRedirect,
		CORSOrigins:     s.cfg.CORSOrigins,
	}, handlers)

	logger.Info("console wired",
		zap.String("guard_scope", string(guardScope)),
		zap.String("api_base", s.cfg.API.BaseURL),
		zap.Bool("jwt_verification", decoder.Verifies()),
	)
	return nil
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP connections, then closes the backing stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	_ = s.logger.Sync()
	return err
}
