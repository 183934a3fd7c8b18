package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kpbu-assistant/internal/ai"
	appsvc "kpbu-assistant/internal/app"
	"kpbu-assistant/internal/cache"
	"kpbu-assistant/internal/config"
	"kpbu-assistant/internal/logging"
	mysqlClient "kpbu-assistant/internal/platform/mysql"
	rabbitmqClient "kpbu-assistant/internal/platform/rabbitmq"
	redisClient "kpbu-assistant/internal/platform/redis"
	"kpbu-assistant/internal/repository"
	"kpbu-assistant/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	AnswerService    *appsvc.AnswerService
	RecommendService *appsvc.RecommendService
	IngestService    *appsvc.IngestService
	History          *cache.HistoryCache
	IngestPublisher  *rabbitmqClient.IngestPublisher
	IngestWorker     *worker.IngestWorker

	StartedAt time.Time
}

type embeddingClient interface {
	appsvc.Embedder
	appsvc.BatchEmbedder
}

type providers struct {
	embedder  embeddingClient
	generator appsvc.Generator
}

// Options picks which parts of the process to start.
type Options struct {
	StartWorker bool
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg, StartedAt: time.Now()}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	app.MySQL = mysqlDB
	if err := mysqlClient.Migrate(mysqlDB); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	app.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	app.MQConn = mqConn

	prov, err := newProviders(cfg)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewRAGDocumentRepository(mysqlDB)
	chunkRepo := repository.NewRAGChunkRepository(mysqlDB)

	app.AnswerService = appsvc.NewAnswerService(prov.embedder, chunkRepo, prov.generator, appsvc.AnswerConfig{
		TopK:               cfg.RAG.TopK,
		EmbeddingDimension: cfg.LLM.EmbeddingDimension,
		Generation: ai.GenerationConfig{
			Temperature:     cfg.LLM.Temperature,
			TopK:            cfg.LLM.TopK,
			TopP:            cfg.LLM.TopP,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		},
	})
	app.RecommendService = appsvc.NewRecommendService(repository.NewDefaultProjectRepository())
	app.IngestService = appsvc.NewIngestService(prov.embedder, docRepo, appsvc.IngestConfig{
		ChunkSize:          cfg.RAG.ChunkSize,
		ChunkOverlap:       cfg.RAG.ChunkOverlap,
		EmbeddingBatchSize: cfg.RAG.EmbeddingBatchSize,
	})
	app.History = cache.NewHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		cfg.Redis.HistoryMaxTurns,
	)
	app.IngestPublisher = rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)

	if opts.StartWorker {
		app.IngestWorker = worker.NewIngestWorker(mqConn, app.IngestService, cfg.RabbitMQ.IngestQueue)
		if err := app.IngestWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start ingest worker failed: %w", err)
		}
	}

	ok = true
	return app, nil
}

func newProviders(cfg *config.Config) (*providers, error) {
	if !cfg.ProvidersConfigured() {
		logging.Warn().Msg("LLM api key or base url missing, chat and ingestion will fail until configured")
		return &providers{embedder: ai.Unconfigured{}, generator: ai.Unconfigured{}}, nil
	}

	embedder, err := ai.NewEmbedder(ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder failed: %w", err)
	}
	chat, err := ai.NewChatClient(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.ChatModel,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("create chat client failed: %w", err)
	}
	return &providers{embedder: embedder, generator: chat}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MySQL != nil {
		if err := mysqlClient.Close(a.MySQL); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
