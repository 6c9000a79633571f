package onboarding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/biz"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/handler"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/router"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/component/database"
	"github.com/kart-io/onboarding-assistant/pkg/component/milvus"
	"github.com/kart-io/onboarding-assistant/pkg/component/redis"
	"github.com/kart-io/onboarding-assistant/pkg/infra/app"
	"github.com/kart-io/onboarding-assistant/pkg/infra/middleware"
	"github.com/kart-io/onboarding-assistant/pkg/infra/pool"
	"github.com/kart-io/onboarding-assistant/pkg/infra/server"
	"github.com/kart-io/onboarding-assistant/pkg/infra/tracing"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/onboarding-assistant/pkg/llm/local"
	_ "github.com/kart-io/onboarding-assistant/pkg/llm/ollama"
	_ "github.com/kart-io/onboarding-assistant/pkg/llm/openai"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "onboarding"

// Server is the assembled onboarding service.
type Server struct {
	mgr     *server.Manager
	http    *server.HTTPServer
	engine  http.Handler
	health  *middleware.HealthManager
	service *biz.Service
}

// NewServer connects every dependency and builds the HTTP server. Resources
// opened before a failure are released again.
func NewServer(ctx context.Context, opts *Options) (_ *Server, err error) {
	s := &Server{
		mgr:    server.NewManager(server.WithShutdownTimeout(opts.Server.ShutdownTimeout)),
		health: middleware.NewHealthManager(),
	}
	defer func() {
		if err != nil {
			_ = s.mgr.Stop(context.Background())
		}
	}()

	// 0. 初始化链路追踪
	tp, err := tracing.NewProvider(ctx, opts.Tracing, appName, app.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.mgr.OnShutdown(tp.Shutdown)
	if tp.Enabled() {
		logger.Infow("Tracing initialized", "exporter", opts.Tracing.Exporter, "endpoint", opts.Tracing.Endpoint)
	}

	// 1. 初始化数据库
	db, err := database.Open(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	s.mgr.OnShutdown(func(context.Context) error { return database.Close(db) })
	if err := store.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	factory := store.NewFactory(db)
	s.health.RegisterChecker("database", factory.Ping)
	logger.Infow("Database initialized", "driver", opts.Database.Driver)

	// 2. 初始化向量存储
	vectors, err := newVectorStore(opts)
	if err != nil {
		return nil, err
	}
	s.mgr.OnShutdown(vectors.Close)
	s.health.RegisterChecker("vector", func(ctx context.Context) error {
		_, err := vectors.Count(ctx)
		return err
	})
	logger.Infow("Vector store initialized", "backend", opts.Vector.Backend)

	// 3. 初始化 Redis 答案缓存
	cache := newAnswerCache(ctx, opts, s)

	// 4. 初始化 LLM 供应商
	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", opts.Embedding.Provider,
		"model", opts.Embedding.Model,
		"dimension", opts.Embedding.Dimension,
	)

	chat, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", opts.Chat.Provider,
		"model", opts.Chat.Model,
	)

	// 5. 初始化事件发布与指标
	publisher := event.NewPublisher(opts.Kafka)
	s.mgr.OnShutdown(func(context.Context) error { return publisher.Close() })

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metricsNamespace, reg)

	// 6. 初始化导入任务池
	var workers *pool.Pool
	if cfg := opts.PoolConfig(); cfg != nil {
		workers, err = pool.NewPool("ingest", cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ingest pool: %w", err)
		}
		s.mgr.OnShutdown(func(context.Context) error {
			return workers.ReleaseTimeout(opts.Server.ShutdownTimeout)
		})
	}

	// 7. 初始化 Biz 层
	s.service = biz.NewService(&biz.Dependencies{
		Store:     factory,
		Vectors:   vectors,
		Embedder:  embedder,
		Chat:      chat,
		Cache:     cache,
		Publisher: publisher,
		Metrics:   m,
		Workers:   workers,
	}, &biz.ServiceConfig{
		Ingest: opts.IngestConfig(),
		Answer: opts.AnswerConfig(),
		Plan:   opts.PlanConfig(),
	})
	if err := s.service.Index.Init(ctx, opts.Embedding.Dimension); err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Infow("Onboarding service initialized",
		"chunk.window", opts.Ingest.ChunkWindow,
		"chunk.overlap", opts.Ingest.ChunkOverlap,
		"answer.top_k", opts.Answer.TopK,
		"ingest.workers", opts.Ingest.Workers,
		"events.enabled", opts.Kafka.Enabled(),
	)

	// 8. 初始化 Handler 与路由
	h := handler.New(s.service, handler.WithMaxUploadBytes(opts.Ingest.MaxUploadBytes))
	s.engine = router.New(&router.Config{
		Mode:       opts.Server.Mode,
		Namespace:  metricsNamespace,
		Registerer: reg,
		Gatherer:   reg,
		Health:     s.health,
	}, h)

	// 9. 初始化服务器
	s.http = server.NewHTTPServer(opts.Server, s.engine)
	s.mgr.AddServer(s.http)

	return s, nil
}

// newVectorStore opens the configured vector backend.
func newVectorStore(opts *Options) (store.VectorStore, error) {
	if opts.Vector.Backend != VectorBackendMilvus {
		return store.NewMemoryStore(), nil
	}
	client, err := milvus.New(opts.Milvus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	logger.Infow("Milvus client initialized", "address", opts.Milvus.Address, "collection", opts.Milvus.Collection)
	return store.NewMilvusStore(client, opts.Milvus.Collection), nil
}

// newAnswerCache connects Redis when caching is enabled. An unreachable
// Redis disables the cache instead of failing startup.
func newAnswerCache(ctx context.Context, opts *Options, s *Server) biz.AnswerCache {
	if !opts.Cache.Enabled {
		logger.Info("Cache is disabled")
		return nil
	}

	client, err := redis.New(ctx, opts.Cache.Redis)
	if err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		return nil
	}
	s.mgr.OnShutdown(func(context.Context) error { return client.Close() })
	s.health.RegisterChecker("redis", client.Ping)

	logger.Infow("Redis cache initialized",
		"addr", opts.Cache.Redis.Addr(),
		"ttl", opts.Cache.TTL,
	)
	return biz.NewRedisAnswerCache(client.Client(), &biz.AnswerCacheConfig{
		TTL:       opts.Cache.TTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	})
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done or a termination signal arrives.
func (s *Server) Run(ctx context.Context) error {
	s.mgr.OnShutdown(func(context.Context) error {
		s.health.SetReady(false)
		return nil
	})
	if err := s.mgr.Start(ctx); err != nil {
		_ = s.mgr.Stop(context.Background())
		return err
	}
	s.health.SetReady(true)
	logger.Infow("Onboarding service is ready", "addr", s.http.Addr(), "version", app.GetVersion())

	return s.mgr.Wait(ctx)
}

// Close releases every resource without serving.
func (s *Server) Close(ctx context.Context) error {
	return s.mgr.Stop(ctx)
}
