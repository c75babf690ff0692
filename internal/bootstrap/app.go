package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sro-assistant/internal/ai"
	"sro-assistant/internal/ai/onnx"
	"sro-assistant/internal/config"
	"sro-assistant/internal/index"
	"sro-assistant/internal/model"
	mysqlClient "sro-assistant/internal/platform/mysql"
	rabbitmqClient "sro-assistant/internal/platform/rabbitmq"
	redisClient "sro-assistant/internal/platform/redis"
	"sro-assistant/internal/pkg/logger"
	"sro-assistant/internal/repository"
	"sro-assistant/internal/worker"
)

type App struct {
	Config       *config.Config
	Log          *zap.Logger
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Index        *index.Index
	AnswerWorker *worker.AnswerLogWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.AnswerLog{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	loader := index.NewCorpusLoader(cfg.Documents.Dirs, log)
	idx := index.New(embedder, loader, log)
	if err := idx.Build(ctx); err != nil {
		return nil, fmt.Errorf("build document index failed: %w", err)
	}

	answerLogRepo := repository.NewAnswerLogRepository(mysqlDB)
	answerWorker := worker.NewAnswerLogWorker(mqConn, answerLogRepo, cfg.RabbitMQ.AnswerLogQueue, log)
	if err := answerWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start answer log worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		Log:          log,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Index:        idx,
		AnswerWorker: answerWorker,
		StartedAt:    time.Now(),
	}, nil
}

func newEmbedder(cfg *config.Config) (index.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "onnx":
		return onnx.NewEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.VocabPath,
			cfg.Embedding.ONNXLibPath,
			cfg.Embedding.Dimension,
		), nil
	case "openai", "":
		return ai.NewHTTPEmbedder(ai.EmbeddingConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AnswerWorker != nil {
		a.AnswerWorker.Close()
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
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
