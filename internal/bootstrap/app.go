package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docubase/internal/ai"
	appsvc "docubase/internal/app"
	"docubase/internal/cache"
	"docubase/internal/chunker"
	"docubase/internal/config"
	"docubase/internal/model"
	"docubase/internal/pkg/textextract"
	mysqlClient "docubase/internal/platform/mysql"
	rabbitmqClient "docubase/internal/platform/rabbitmq"
	redisClient "docubase/internal/platform/redis"
	"docubase/internal/repository"
	"docubase/internal/worker"
)

type App struct {
	Config  *config.Config
	MySQL   *gorm.DB
	Redis   *redis.Client
	MQConn  *amqp.Connection
	Service *appsvc.KnowledgeService
	Worker  *worker.ReindexWorker

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
		&model.Collection{},
		&model.Document{},
		&model.DocumentBlob{},
		&model.Chunk{},
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

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	colRepo := repository.NewCollectionRepository(mysqlDB)

	// Without an API key the provider stays nil and every embedding
	// comes from the fallback; documents indexed that way are marked
	// and should be re-indexed once credentials land.
	var provider ai.Provider
	if cfg.Embedding.APIKey != "" {
		provider = ai.NewClient(ai.Config{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		})
	}
	embedder := ai.NewResilient(provider, cfg.Embedding.Dimension)

	service := appsvc.NewKnowledgeService(
		docRepo,
		chunkRepo,
		colRepo,
		textextract.NewRegistry(),
		chunker.New(cfg.Pipeline.ChunkSize, cfg.Pipeline.OverlapPercent),
		embedder,
		appsvc.Options{
			Cache:          cache.NewQueryVectorCache(redisCli, time.Duration(cfg.Redis.QueryVectorTTLSecond)*time.Second),
			ReindexPub:     rabbitmqClient.NewReindexPublisher(mqConn, cfg.RabbitMQ.ReindexQueue),
			FetchClient:    &http.Client{Timeout: time.Duration(cfg.Pipeline.FetchTimeoutSec) * time.Second},
			EmbedBatchSize: cfg.Pipeline.EmbedBatchSize,
			DefaultTopK:    cfg.Pipeline.DefaultTopK,
		},
	)

	reindexWorker := worker.NewReindexWorker(mqConn, service, cfg.RabbitMQ.ReindexQueue)
	if err := reindexWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start reindex worker failed: %w", err)
	}

	return &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		Service:   service,
		Worker:    reindexWorker,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Worker != nil {
		a.Worker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
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
