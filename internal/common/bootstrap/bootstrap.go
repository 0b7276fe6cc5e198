package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	authrepo "github.com/AlibekovAA/fadechat/internal/auth/repository"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/db"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/migrations"
	"github.com/AlibekovAA/fadechat/internal/common/resilience"
	messagerepo "github.com/AlibekovAA/fadechat/internal/message/repository"
	"github.com/AlibekovAA/fadechat/internal/storage/memory"
	userrepo "github.com/AlibekovAA/fadechat/internal/user/repository"
)

// Stores is the set of repositories both services draw from. Pool is nil
// for the memory driver.
type Stores struct {
	Users    userrepo.Repository
	Tokens   authrepo.TokenRepository
	Attempts authrepo.AttemptLedger
	Messages messagerepo.Repository
	Pool     *pgxpool.Pool
}

func (s *Stores) Close(context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

type App struct {
	Log    *logger.Logger
	Clock  clock.Clock
	Stores *Stores
}

type AuthApp struct {
	App
	Config config.AuthConfig
}

type ChatApp struct {
	App
	Config config.ChatConfig
}

func NewAuthApp(ctx context.Context, configPath string) (*AuthApp, error) {
	log, err := initializeLogger("auth")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAuthConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initializeStores(ctx, log, "auth", cfg.Storage, cfg.CircuitBreaker)
	if err != nil {
		return nil, err
	}

	return &AuthApp{
		App:    App{Log: log, Clock: clock.NewRealClock(), Stores: stores},
		Config: cfg,
	}, nil
}

func NewChatApp(ctx context.Context, configPath string) (*ChatApp, error) {
	log, err := initializeLogger("chat")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadChatConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initializeStores(ctx, log, "chat", cfg.Storage, cfg.CircuitBreaker)
	if err != nil {
		return nil, err
	}

	return &ChatApp{
		App:    App{Log: log, Clock: clock.NewRealClock(), Stores: stores},
		Config: cfg,
	}, nil
}

func initializeStores(
	ctx context.Context,
	log *logger.Logger,
	service string,
	storage config.StorageConfig,
	cbCfg config.CircuitBreakerConfig,
) (*Stores, error) {
	if storage.Driver == config.DriverMemory {
		log.Warnf("%s service using in-memory storage; data is not shared and is lost on exit", service)
		store := memory.NewStore()
		return &Stores{
			Users:    store.Users(),
			Tokens:   store.Tokens(),
			Attempts: store.Attempts(),
			Messages: store.Messages(),
		}, nil
	}

	if storage.AutoMigrate {
		if err := migrations.Run(ctx, log, storage.DatabaseURL, migrations.Up, 0); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	pool, err := db.NewPool(ctx, log, storage.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	db.StartPoolMetrics(ctx, pool, 0)

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cbCfg.Threshold,
		Timeout:    cbCfg.Timeout,
		ResetAfter: cbCfg.Reset,
		Name:       service + "_db",
		IsFailure:  db.IsUnavailable,
		Logger:     log,
	})

	return &Stores{
		Users:    userrepo.NewPgRepository(pool, cb),
		Tokens:   authrepo.NewPgTokenRepository(pool, cb),
		Attempts: authrepo.NewPgAttemptLedger(pool, cb),
		Messages: messagerepo.NewPgRepository(pool, cb),
		Pool:     pool,
	}, nil
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
