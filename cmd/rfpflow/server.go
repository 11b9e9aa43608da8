package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/rfpflow/api/handlers"
	"github.com/BaSui01/rfpflow/batch"
	"github.com/BaSui01/rfpflow/config"
	"github.com/BaSui01/rfpflow/generate"
	"github.com/BaSui01/rfpflow/internal/cache"
	"github.com/BaSui01/rfpflow/internal/database"
	"github.com/BaSui01/rfpflow/internal/metrics"
	"github.com/BaSui01/rfpflow/internal/server"
	"github.com/BaSui01/rfpflow/internal/telemetry"
	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/prompt"
	claude "github.com/BaSui01/rfpflow/providers/anthropic"
	"github.com/BaSui01/rfpflow/providers/openaicompat"
	"github.com/BaSui01/rfpflow/retrieval"
	"github.com/BaSui01/rfpflow/store"
	"github.com/BaSui01/rfpflow/synthesis"
	"github.com/BaSui01/rfpflow/types"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 RFPFlow 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	otel   *telemetry.Providers
	db     *gorm.DB

	pool         *database.PoolManager
	cacheManager *cache.Manager

	metricsCollector *metrics.Collector
	scheduler        *batch.Scheduler

	httpManager *server.Manager
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers, db *gorm.DB) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		otel:   otelProviders,
		db:     db,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 组装依赖并启动 HTTP 服务
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("rfpflow", s.logger)

	if err := s.initStorage(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	svc, err := s.buildGenerateService()
	if err != nil {
		return fmt.Errorf("failed to build generation service: %w", err)
	}

	s.scheduler = batch.NewScheduler(svc, s.cfg.Batch, s.metricsCollector, s.logger)

	if err := s.startHTTPServer(svc); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("max_concurrent_jobs", s.cfg.Batch.MaxConcurrentJobs),
	)
	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initStorage 初始化数据库连接池与 Redis 缓存。
// 缓存不可用时降级运行，只影响检索缓存。
func (s *Server) initStorage() error {
	pool, err := database.NewPoolManager(s.db, database.PoolConfig{
		MaxIdleConns:        s.cfg.Database.MaxIdleConns,
		MaxOpenConns:        s.cfg.Database.MaxOpenConns,
		ConnMaxLifetime:     s.cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:     10 * time.Minute,
		HealthCheckInterval: 30 * time.Second,
	}, s.logger)
	if err != nil {
		return err
	}
	pool.OnStats(func(st database.PoolStats) {
		s.metricsCollector.RecordDBConnections("postgres", st.OpenConnections, st.Idle)
	})
	s.pool = pool

	cacheManager, err := cache.NewManager(s.cfg.Redis, s.logger)
	if err != nil {
		s.logger.Warn("Redis not available, retrieval cache disabled", zap.Error(err))
	} else {
		s.cacheManager = cacheManager
	}

	return nil
}

// buildGenerateService 组装生成流水线：存储、检索、Provider 注册表与合成引擎
func (s *Server) buildGenerateService() (*generate.Service, error) {
	resultStore := store.NewGormStore(s.pool.DB(), s.logger).
		WithTxRunner(func(ctx context.Context, fn store.TxFunc) error {
			return s.pool.WithTransactionRetry(ctx, 3, fn)
		})
	if err := resultStore.InitDatabase(); err != nil {
		return nil, fmt.Errorf("auto-migrate failed: %w", err)
	}

	registry, err := s.buildRegistry()
	if err != nil {
		return nil, err
	}

	retriever := s.buildRetriever()
	builder := prompt.NewBuilder(s.cfg.Synthesis.TokenBudget, s.logger)
	engine := s.buildSynthesisEngine(registry, builder)

	return generate.NewService(generate.Options{
		Store:           resultStore,
		Retriever:       retriever,
		Registry:        registry,
		Engine:          engine,
		Builder:         builder,
		TopK:            s.cfg.Retrieval.TopK,
		MinScore:        s.cfg.Retrieval.MinScore,
		ProviderTimeout: s.cfg.Synthesis.Timeout,
		Metrics:         s.metricsCollector,
		Logger:          s.logger,
	}), nil
}

// buildRegistry 按配置注册已启用的 Provider
func (s *Server) buildRegistry() (*llm.Registry, error) {
	s.cfg.LLM.Normalize()
	openaiOn, deepseekOn, anthropicOn := s.cfg.LLM.Enabled()

	if !openaiOn && !deepseekOn && !anthropicOn {
		return nil, fmt.Errorf("no LLM provider configured, set at least one API key")
	}

	registry := llm.NewRegistry(s.logger)

	if openaiOn {
		registry.Register(types.ProviderOpenAI, openaicompat.New(openaicompat.Options{
			Name:         "openai",
			APIKey:       s.cfg.LLM.OpenAI.APIKey,
			BaseURL:      s.cfg.LLM.OpenAI.BaseURL,
			DefaultModel: s.cfg.LLM.OpenAI.Model,
			Timeout:      s.cfg.LLM.OpenAI.Timeout,
		}, s.logger))
	}
	if deepseekOn {
		registry.Register(types.ProviderDeepSeek, openaicompat.New(openaicompat.Options{
			Name:         "deepseek",
			APIKey:       s.cfg.LLM.DeepSeek.APIKey,
			BaseURL:      s.cfg.LLM.DeepSeek.BaseURL,
			DefaultModel: s.cfg.LLM.DeepSeek.Model,
			Timeout:      s.cfg.LLM.DeepSeek.Timeout,
		}, s.logger))
	}
	if anthropicOn {
		registry.Register(types.ProviderAnthropic, claude.New(s.cfg.LLM.Claude, s.logger))
	}

	s.logger.Info("LLM providers registered",
		zap.Bool("openai", openaiOn),
		zap.Bool("deepseek", deepseekOn),
		zap.Bool("anthropic", anthropicOn),
	)
	return registry, nil
}

// buildRetriever 组装 pgvector 检索器，可选 Redis 缓存层
func (s *Server) buildRetriever() retrieval.Retriever {
	embedder := retrieval.NewOpenAIEmbedder(retrieval.EmbedderOptions{
		APIKey:  s.cfg.LLM.OpenAI.APIKey,
		BaseURL: s.cfg.LLM.OpenAI.BaseURL,
		Model:   s.cfg.Retrieval.EmbeddingModel,
	}, s.logger)

	var retriever retrieval.Retriever = retrieval.NewPGVectorRetriever(s.pool.DB(), embedder, s.logger)

	if s.cacheManager != nil && s.cfg.Retrieval.CacheTTL > 0 {
		retriever = retrieval.NewCachedRetriever(retriever, s.cacheManager, s.cfg.Retrieval.CacheTTL, s.logger).
			WithMetrics(s.metricsCollector)
		s.logger.Info("retrieval cache enabled", zap.Duration("ttl", s.cfg.Retrieval.CacheTTL))
	}
	return retriever
}

// buildSynthesisEngine 按配置选择合成策略
func (s *Server) buildSynthesisEngine(registry *llm.Registry, builder *prompt.Builder) synthesis.Engine {
	if s.cfg.Synthesis.Strategy == "first" {
		return synthesis.NewFirstAnswerEngine()
	}

	provider := registry.Get(types.ProviderID(s.cfg.Synthesis.Provider))
	if provider == nil {
		s.logger.Warn("synthesis provider not configured, falling back to first-answer strategy",
			zap.String("provider", s.cfg.Synthesis.Provider),
		)
		return synthesis.NewFirstAnswerEngine()
	}
	return synthesis.NewLLMEngine(provider, builder, s.cfg.Synthesis.Timeout, s.logger).
		WithMetrics(s.metricsCollector)
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// startHTTPServer 注册路由与中间件并启动 HTTP 服务
func (s *Server) startHTTPServer(svc *generate.Service) error {
	resultStore := store.NewGormStore(s.pool.DB(), s.logger)

	healthHandler := handlers.NewHealthHandler(Version, s.logger)
	healthHandler.AddCheck("database", s.pool.Ping)
	if s.cacheManager != nil {
		healthHandler.AddCheck("redis", s.cacheManager.Ping)
	}

	generateHandler := handlers.NewGenerateHandler(svc, s.logger)
	jobsHandler := handlers.NewJobsHandler(s.scheduler, s.logger)
	similarHandler := handlers.NewSimilarHandler(
		resultStore,
		s.buildRetriever(),
		s.cfg.Retrieval.TopK,
		s.cfg.Retrieval.MinScore,
		s.logger,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/generate-response", generateHandler.Generate)
	mux.HandleFunc("POST /api/batch", jobsHandler.Submit)
	mux.HandleFunc("GET /api/batch/{job_id}", jobsHandler.Progress)
	mux.HandleFunc("POST /api/batch/{job_id}/cancel", jobsHandler.Cancel)
	mux.HandleFunc("GET /api/similar/{requirement_id}", similarHandler.Similar)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}
	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 1. 等待运行中的批量任务结束
	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(ctx); err != nil {
			s.logger.Error("Scheduler shutdown error", zap.Error(err))
		}
	}

	// 2. 关闭 HTTP 服务器
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. 关闭缓存与连接池
	if s.cacheManager != nil {
		if err := s.cacheManager.Close(); err != nil {
			s.logger.Error("Cache shutdown error", zap.Error(err))
		}
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			s.logger.Error("Database pool shutdown error", zap.Error(err))
		}
	}

	// 4. 刷新遥测数据
	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
