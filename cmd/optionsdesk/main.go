package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	analysisapp "github.com/wyfcoding/optionsdesk/internal/analysis/application"
	analysisdomain "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	analysismysql "github.com/wyfcoding/optionsdesk/internal/analysis/infrastructure/persistence/mysql"
	analysisredis "github.com/wyfcoding/optionsdesk/internal/analysis/infrastructure/persistence/redis"
	analysishttp "github.com/wyfcoding/optionsdesk/internal/analysis/interfaces/http"
	fileapp "github.com/wyfcoding/optionsdesk/internal/file/application"
	filemysql "github.com/wyfcoding/optionsdesk/internal/file/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionsdesk/internal/file/infrastructure/storage"
	filehttp "github.com/wyfcoding/optionsdesk/internal/file/interfaces/http"
	portfolioapp "github.com/wyfcoding/optionsdesk/internal/portfolio/application"
	portfoliomysql "github.com/wyfcoding/optionsdesk/internal/portfolio/infrastructure/persistence/mysql"
	portfoliohttp "github.com/wyfcoding/optionsdesk/internal/portfolio/interfaces/http"
	riskapp "github.com/wyfcoding/optionsdesk/internal/risk/application"
	"github.com/wyfcoding/optionsdesk/internal/risk/infrastructure/messaging"
	riskmysql "github.com/wyfcoding/optionsdesk/internal/risk/infrastructure/persistence/mysql"
	riskhttp "github.com/wyfcoding/optionsdesk/internal/risk/interfaces/http"
	strategyapp "github.com/wyfcoding/optionsdesk/internal/strategy/application"
	strategymysql "github.com/wyfcoding/optionsdesk/internal/strategy/infrastructure/persistence/mysql"
	strategyhttp "github.com/wyfcoding/optionsdesk/internal/strategy/interfaces/http"
	structureapp "github.com/wyfcoding/optionsdesk/internal/structure/application"
	structuremysql "github.com/wyfcoding/optionsdesk/internal/structure/infrastructure/persistence/mysql"
	structurehttp "github.com/wyfcoding/optionsdesk/internal/structure/interfaces/http"
	"github.com/wyfcoding/optionsdesk/pkg/auth"
	"github.com/wyfcoding/optionsdesk/pkg/cache"
	"github.com/wyfcoding/optionsdesk/pkg/config"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
	"github.com/wyfcoding/optionsdesk/pkg/ratelimit"
)

// BootstrapName 服务名
const BootstrapName = "optionsdesk"

// AppContext 进程级依赖
type AppContext struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Limiter  ratelimit.RateLimiter
	Verifier *auth.JWT

	Analysis      *analysishttp.AnalysisHandler
	Portfolios    *portfoliohttp.PortfolioHandler
	Strategies    *strategyhttp.StrategyHandler
	Alerts        *riskhttp.AlertHandler
	Files         *filehttp.FileHandler
	Structures    *structurehttp.StructureHandler
	FileStoreRoot string
}

func main() {
	configPath := flag.String("config", "configs/optionsdesk.toml", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("service exited", "service", BootstrapName, "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	appCtx, cleanup, err := initService(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer cleanup()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(m),
		maxBodyMiddleware(int64(cfg.HTTP.MaxBodyMB)<<20),
	)
	registerGin(engine, appCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "service", BootstrapName, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info(context.Background(), "shutting down", "service", BootstrapName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func registerGin(e *gin.Engine, app *AppContext) {
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   BootstrapName,
			"timestamp": time.Now().Unix(),
		})
	})
	e.Static(app.Config.Storage.BaseURL, app.FileStoreRoot)

	api := e.Group("/api/v1",
		middleware.IdentityMiddleware(app.Verifier, app.Config.Auth.UserHeader),
		middleware.RateLimitMiddleware(app.Limiter, app.Config.RateLimit),
	)
	app.Analysis.RegisterRoutes(api)
	app.Portfolios.RegisterRoutes(api)
	app.Strategies.RegisterRoutes(api)
	app.Alerts.RegisterRoutes(api)
	app.Files.RegisterRoutes(api)
	app.Structures.RegisterRoutes(api)

	slog.Default().Info("HTTP routes registered", "service", BootstrapName)
}

func initService(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*AppContext, func(), error) {
	slog.Info("initializing service dependencies...")

	var closers []func()
	cleanup := func() {
		slog.Info("cleaning up resources...")
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*AppContext, func(), error) {
		cleanup()
		return nil, nil, err
	}

	database, err := db.Init(cfg.Database)
	if err != nil {
		return fail(fmt.Errorf("init database: %w", err))
	}
	closers = append(closers, func() { _ = database.Close() })

	if cfg.Database.AutoMigrate {
		models := []any{&mq.OutboxMessage{}}
		models = append(models, analysismysql.Models()...)
		models = append(models, strategymysql.Models()...)
		models = append(models, portfoliomysql.Models()...)
		models = append(models, riskmysql.Models()...)
		models = append(models, filemysql.Models()...)
		models = append(models, structuremysql.Models()...)
		if err := database.AutoMigrate(models...); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
	}

	// Redis 关闭时结果缓存留空，限流退化为进程内令牌桶
	var resultCache analysisdomain.ResultCache
	var limiter ratelimit.RateLimiter = ratelimit.NewLocalRateLimiter()
	if cfg.Redis.Enabled {
		redisCache, err := cache.New(cfg.Redis)
		if err != nil {
			return fail(fmt.Errorf("init redis: %w", err))
		}
		closers = append(closers, func() { _ = redisCache.Close() })
		resultCache = analysisredis.NewResultCache(redisCache, time.Duration(cfg.Analysis.CacheTTL)*time.Second)
		limiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	}

	if cfg.Metrics.Enabled {
		metricsSrv := m.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		})
	}

	outboxOpts := []mq.OutboxOption{
		mq.WithMaxAttempts(cfg.Outbox.MaxAttempts),
		mq.WithResultHook(m.RecordOutbox),
	}
	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(cfg.Kafka)
		closers = append(closers, func() { _ = producer.Close() })
		outboxOpts = append(outboxOpts, mq.WithSender(producer))
	}
	outbox := mq.NewOutbox(database.DB, outboxOpts...)
	if cfg.Kafka.Enabled {
		relay, err := mq.NewRelay(ctx, outbox, cfg.Outbox)
		if err != nil {
			return fail(fmt.Errorf("init outbox relay: %w", err))
		}
		relay.Start()
		closers = append(closers, relay.Stop)
	}

	var verifier *auth.JWT
	if cfg.Auth.JWTSecret != "" {
		verifier = &auth.JWT{Secret: []byte(cfg.Auth.JWTSecret)}
	}

	store, err := storage.NewLocalStore(cfg.Storage.BaseDir, cfg.Storage.BaseURL)
	if err != nil {
		return fail(fmt.Errorf("init file store: %w", err))
	}

	tx := db.NewTransactor(database.DB)

	historyRepo := analysismysql.NewHistoryRepository(database.DB)
	strategyRepo := strategymysql.NewStrategyRepository(database.DB)
	portfolioRepo := portfoliomysql.NewPortfolioRepository(database.DB)
	alertRepo := riskmysql.NewAlertRepository(database.DB)
	fileRepo := filemysql.NewFileRepository(database.DB)
	structureRepo := structuremysql.NewStructureRepository(database.DB)

	app := &AppContext{
		Config:   cfg,
		Metrics:  m,
		Limiter:  limiter,
		Verifier: verifier,
		Analysis: analysishttp.NewAnalysisHandler(
			analysisapp.NewAnalysisCommandService(tx, historyRepo, resultCache, outbox, m),
			analysisapp.NewAnalysisQueryService(historyRepo, cfg.Analysis.DefaultHistoryLimit),
		),
		Portfolios: portfoliohttp.NewPortfolioHandler(
			portfolioapp.NewPortfolioCommandService(tx, portfolioRepo, strategyRepo),
			portfolioapp.NewPortfolioQueryService(portfolioRepo, strategyRepo),
		),
		Strategies: strategyhttp.NewStrategyHandler(
			strategyapp.NewStrategyService(tx, strategyRepo, portfolioRepo),
		),
		Alerts: riskhttp.NewAlertHandler(
			riskapp.NewAlertService(tx, alertRepo, portfolioRepo, messaging.NewAlertPublisher(outbox, cfg.Kafka.Enabled), m),
		),
		Files: filehttp.NewFileHandler(
			fileapp.NewFileService(tx, fileRepo, store, outbox, m),
		),
		Structures: structurehttp.NewStructureHandler(
			structureapp.NewStructureService(tx, structureRepo, outbox),
		),
		FileStoreRoot: cfg.Storage.BaseDir,
	}
	return app, cleanup, nil
}

// maxBodyMiddleware 限制请求体大小
func maxBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
