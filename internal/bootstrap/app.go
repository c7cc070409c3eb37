package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fundlens/internal/ai"
	"fundlens/internal/app"
	"fundlens/internal/cache"
	"fundlens/internal/config"
	"fundlens/internal/model"
	mysqlClient "fundlens/internal/platform/mysql"
	rabbitmqClient "fundlens/internal/platform/rabbitmq"
	redisClient "fundlens/internal/platform/redis"
	"fundlens/internal/repository"
	"fundlens/internal/search"
	"fundlens/internal/worker"
)

// App holds every long-lived resource plus the wired services the HTTP layer
// serves.
type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	IngestWorker *worker.DocumentIngestWorker

	IngestService       *app.IngestService
	DocumentService     *app.DocumentService
	FundService         *app.FundService
	MetricsService      *app.MetricsService
	QueryService        *app.QueryService
	ConversationService *app.ConversationService
	SearchIndex         *search.Index

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Fund{},
		&model.Document{},
		&model.DocumentPayload{},
		&model.CapitalCall{},
		&model.Distribution{},
		&model.Adjustment{},
		&model.UnclassifiedTable{},
		&model.DocumentChunk{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	fundRepo := repository.NewFundRepository(mysqlDB)
	docRepo := repository.NewDocumentRepository(mysqlDB)
	payloadRepo := repository.NewDocumentPayloadRepository(mysqlDB)
	txRepo := repository.NewTransactionRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	unclassifiedRepo := repository.NewUnclassifiedTableRepository(mysqlDB)
	convRepo := repository.NewConversationRepository(mysqlDB)
	ingestWriter := repository.NewIngestWriter(mysqlDB, txRepo, unclassifiedRepo, chunkRepo)

	llmClient := ai.NewOpenAICompatibleClient()
	chatCfg := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	embCfg := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}

	answerCache := cache.NewAnswerCache(redisCli, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewDocumentPublisher(mqConn, cfg.RabbitMQ.DocumentQueue)

	ingestService := app.NewIngestService(
		docRepo,
		payloadRepo,
		fundRepo,
		ingestWriter,
		llmClient,
		embCfg,
		publisher,
		answerCache,
		cfg.Ingest.ChunkSize,
		cfg.Ingest.ChunkOverlap,
	)

	searchIndex := search.NewIndex(chunkRepo, &embedderAdapter{client: llmClient, cfg: embCfg})
	metricsService := app.NewMetricsService(fundRepo, txRepo)
	queryService := app.NewQueryService(
		fundRepo,
		convRepo,
		metricsService,
		searchIndex,
		llmClient,
		chatCfg,
		answerCache,
		cfg.Search.TopK,
		cfg.Search.HistoryWindow,
	)

	// Documents stuck in processing from a previous run go back to pending
	// and get re-enqueued before the worker starts consuming.
	staleAfter := time.Duration(cfg.Ingest.StaleProcessingMinute) * time.Minute
	if err := ingestService.Reconcile(ctx, staleAfter); err != nil {
		log.Printf("WARN: reconcile stale documents failed: %v", err)
	}

	ingestWorker := worker.NewDocumentIngestWorker(mqConn, ingestService, cfg.RabbitMQ.DocumentQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:              cfg,
		MySQL:               mysqlDB,
		Redis:               redisCli,
		MQConn:              mqConn,
		IngestWorker:        ingestWorker,
		IngestService:       ingestService,
		DocumentService:     app.NewDocumentService(docRepo, unclassifiedRepo),
		FundService:         app.NewFundService(fundRepo, txRepo),
		MetricsService:      metricsService,
		QueryService:        queryService,
		ConversationService: app.NewConversationService(convRepo, fundRepo),
		SearchIndex:         searchIndex,
		StartedAt:           time.Now(),
	}, nil
}

// embedderAdapter binds the shared LLM client and embedding model into the
// single-text interface the search index wants.
type embedderAdapter struct {
	client *ai.OpenAICompatibleClient
	cfg    ai.EmbeddingConfig
}

func (e *embedderAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
