package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"articlesearch/internal/agent"
	"articlesearch/internal/ai"
	"articlesearch/internal/app"
	"articlesearch/internal/cache"
	"articlesearch/internal/config"
	mysqlClient "articlesearch/internal/platform/mysql"
	rabbitmqClient "articlesearch/internal/platform/rabbitmq"
	redisClient "articlesearch/internal/platform/redis"
	"articlesearch/internal/repository"
	"articlesearch/internal/search"
	"articlesearch/internal/worker"
)

// App holds every long-lived resource of a running process.
type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	MemoryWorker *worker.MemoryPersistWorker

	Articles *app.ArticleService
	Chat     *app.ChatService

	StartedAt time.Time
}

// Services are the optional collaborators NewServices wires in.
type Services struct {
	HistoryCache app.HistoryCache
	Publisher    app.MemoryPublisher
}

// OpenDatabase connects to MySQL and creates the schema when absent.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.MySQL.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// New connects to MySQL and, when enabled, Redis and RabbitMQ, then wires the
// services on top of them. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{Config: cfg, StartedAt: time.Now()}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.MySQL = db

	memoryRepo := repository.NewMemoryRepository(db)
	var extra Services

	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		extra.HistoryCache = cache.NewHistoryCache(
			client,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
	}

	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		a.MQConn = conn

		memoryWorker := worker.NewMemoryPersistWorker(conn, memoryRepo, cfg.RabbitMQ.MemoryPersistQueue)
		if err := memoryWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start memory worker failed: %w", err)
		}
		a.MemoryWorker = memoryWorker
		extra.Publisher = rabbitmqClient.NewMemoryPublisher(conn, cfg.RabbitMQ.MemoryPersistQueue)
	}

	provider, err := ai.NewProvider(cfg.LLM, cfg.EmbeddingAPIKey())
	if err != nil {
		return nil, err
	}

	a.Articles, a.Chat, err = NewServices(cfg, db, provider, extra)
	if err != nil {
		return nil, err
	}

	slog.Default().Info("application ready",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"redis", cfg.Redis.Enabled,
		"rabbitmq", cfg.RabbitMQ.Enabled,
	)
	ok = true
	return a, nil
}

// NewServices builds the article and chat services over db. Memory records are
// written directly to db unless extra carries a publisher.
func NewServices(cfg *config.Config, db *gorm.DB, provider *ai.Provider, extra Services) (*app.ArticleService, *app.ChatService, error) {
	articleRepo := repository.NewArticleRepository(db)
	memoryRepo := repository.NewMemoryRepository(db)

	searcher, err := search.NewSearcher(articleRepo, provider.Embedder(),
		search.WithTopK(cfg.Search.TopK),
		search.WithScoreThreshold(cfg.Search.ScoreThreshold),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create searcher failed: %w", err)
	}

	ag, err := agent.New(provider.Model(), search.NewTool(searcher),
		agent.WithMaxIterations(cfg.LLM.MaxIterations),
		agent.WithTemperature(cfg.LLM.Temperature),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create agent failed: %w", err)
	}

	publisher := extra.Publisher
	if publisher == nil {
		publisher = app.NewDirectPublisher(memoryRepo)
	}

	articles := app.NewArticleService(articleRepo, searcher)
	chat := app.NewChatService(memoryRepo, publisher, extra.HistoryCache, ag, cfg.Memory.SessionNaming)
	return articles, chat, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.MemoryWorker != nil {
		a.MemoryWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
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
