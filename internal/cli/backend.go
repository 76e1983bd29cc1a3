package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/config"
	"quiz-platform-service/internal/infra/memory"
	"quiz-platform-service/internal/infra/postgres"
	infraredis "quiz-platform-service/internal/infra/redis"
)

// backend is the storage wiring chosen from config: Postgres and Redis when
// configured, in-memory stand-ins otherwise.
type backend struct {
	attempts app.AttemptStore
	catalog  app.CatalogStore
	users    app.UserStore
	quizzes  app.QuizRepository
	revoked  app.RevocationStore
	inMemory bool
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	var loader memory.QuizLoader

	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := postgres.NewStore(db)
		b.attempts, b.catalog, b.users = store, store, store

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres pool: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		loader = postgres.NewQuizLoader(pool)
	} else {
		log.Printf("postgres url not configured, using in-memory store")
		store := memory.NewStore()
		b.attempts, b.catalog, b.users = store, store, store
		loader = store
		b.inMemory = true
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	if cfg.Redis.Addr != "" {
		client, err := redisClient(cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.quizzes = infraredis.NewQuizRepository(client, loader, quizTTL)
		b.revoked = infraredis.NewTokenStore(client)
	} else {
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
		b.revoked = memory.NewTokenStore()
	}
	return b, nil
}

// redisClient accepts either host:port or a redis:// URL.
func redisClient(cfg config.Config) (*redis.Client, error) {
	if strings.HasPrefix(cfg.Redis.Addr, "redis://") || strings.HasPrefix(cfg.Redis.Addr, "rediss://") {
		opts, err := redis.ParseURL(cfg.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}), nil
}
