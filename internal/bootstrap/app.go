package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"path2prevention/internal/ai"
	appsvc "path2prevention/internal/app"
	"path2prevention/internal/cache"
	"path2prevention/internal/chat"
	"path2prevention/internal/config"
	"path2prevention/internal/embedding"
	"path2prevention/internal/platform/logger"
	postgresClient "path2prevention/internal/platform/postgres"
	rabbitmqClient "path2prevention/internal/platform/rabbitmq"
	redisClient "path2prevention/internal/platform/redis"
	"path2prevention/internal/platform/telemetry"
	"path2prevention/internal/repository"
	"path2prevention/internal/worker"
)

// Services is everything the transports call into.
type Services struct {
	Programs    *appsvc.ProgramService
	Semantic    *appsvc.SemanticService
	Index       *appsvc.IndexService
	Maintenance *appsvc.MaintenanceService
	Assessments *appsvc.AssessmentService
	Admin       *appsvc.AdminService
	Chat        *appsvc.ChatService
}

type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Postgres *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Embedder embedding.Embedder

	AssessmentWorker *worker.AssessmentPersistWorker
	Services         Services

	StartedAt         time.Time
	shutdownTelemetry telemetry.ShutdownFunc
}

type Options struct {
	// StartWorkers consumes the assessment queue in this process.
	StartWorkers bool
}

// New wires the application. Postgres being down is not fatal: read paths
// serve static data until it comes back. Redis and RabbitMQ failures fall
// back to in-process session storage and direct database writes.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	a.shutdownTelemetry = telemetry.Init(ctx, log, cfg.App, cfg.Telemetry)

	db, err := postgresClient.New(ctx, cfg.PostgresDSN(), log)
	if db == nil {
		return nil, err
	}
	if err != nil {
		log.Warn("postgres unreachable, starting in degraded mode", "error", err)
	}
	a.Postgres = db

	sessionTTL := time.Duration(cfg.Redis.SessionTTLSeconds) * time.Second
	var sessions appsvc.SessionStore = cache.NewMemorySessionStore(sessionTTL)
	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, keeping chat sessions in memory", "error", err)
		} else {
			a.Redis = client
			sessions = cache.NewSessionCache(client, sessionTTL)
		}
	}

	programRepo := repository.NewProgramRepository(db)
	vectorRepo := repository.NewVectorRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)

	var publisher appsvc.AssessmentPublisher
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.AssessmentQueue)
		if err != nil {
			log.Warn("rabbitmq unavailable, writing assessments directly", "error", err)
		} else {
			a.MQConn = conn
			publisher = rabbitmqClient.NewAssessmentPublisher(conn, cfg.RabbitMQ.AssessmentQueue)
			if opts.StartWorkers {
				a.AssessmentWorker = worker.NewAssessmentPersistWorker(conn, assessmentRepo, cfg.RabbitMQ.AssessmentQueue, log)
				if err := a.AssessmentWorker.Start(ctx); err != nil {
					_ = a.Close()
					return nil, fmt.Errorf("start assessment worker failed: %w", err)
				}
			}
		}
	}

	llmClient := ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	embedder, err := embedding.New(cfg.Embedding, llmClient)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Embedder = embedder

	chatCfg := ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model}
	intent := appsvc.NewIntentAnalyzer(llmClient, chatCfg, ai.CompletionOptions{
		MaxTokens:   cfg.LLM.IntentMaxTokens,
		Temperature: cfg.LLM.IntentTemperature,
	}, log)

	programs := appsvc.NewProgramService(programRepo, cfg.Search.DefaultRadius, log)
	semantic := appsvc.NewSemanticService(vectorRepo, programRepo, embedder, intent, appsvc.SemanticConfig{
		Mode:                  cfg.Search.Mode,
		VectorThreshold:       cfg.Search.VectorThreshold,
		HybridVectorThreshold: cfg.Search.HybridVectorThreshold,
		HybridWeight:          cfg.Search.HybridWeight,
		DefaultLimit:          cfg.Search.DefaultLimit,
		MaxLimit:              cfg.Search.MaxLimit,
	}, log)

	router := chat.NewRouter(
		appsvc.NewChatFinder(programs, semantic),
		appsvc.NewChatLLM(llmClient, chatCfg, ai.CompletionOptions{
			MaxTokens:   cfg.LLM.ChatMaxTokens,
			Temperature: cfg.LLM.ChatTemperature,
		}),
		chat.Config{
			FollowUpDelayMillis: cfg.Chat.FollowUpDelayMillis,
			NavigateDelayMillis: cfg.Chat.NavigateDelayMillis,
			PromptHistory:       cfg.Chat.PromptHistory,
			SemanticLimit:       cfg.Search.DefaultLimit,
		},
	)

	a.Services = Services{
		Programs:    programs,
		Semantic:    semantic,
		Index:       appsvc.NewIndexService(programRepo, vectorRepo, embedder, time.Duration(cfg.Search.IndexIntervalMillis)*time.Millisecond, log),
		Maintenance: appsvc.NewMaintenanceService(schemaRepo, programRepo, vectorRepo, log),
		Assessments: appsvc.NewAssessmentService(assessmentRepo, publisher, programs, log),
		Admin:       appsvc.NewAdminService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute),
		Chat:        appsvc.NewChatService(sessions, router, log),
	}
	return a, nil
}

// Close releases resources in reverse dependency order: the worker stops
// consuming before its connection goes away.
func (a *App) Close() error {
	var closeErr error
	if a.AssessmentWorker != nil {
		a.AssessmentWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if closer, ok := a.Embedder.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			closeErr = err
		}
	}
	if err := postgresClient.Close(a.Postgres); err != nil {
		closeErr = err
	}
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTelemetry(ctx); err != nil {
			closeErr = err
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}
