package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/infra/memory"
	pgloader "millionaire-service/internal/infra/postgres"
	redisstore "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/infra/sqlstore"
	"millionaire-service/internal/infra/sqlstore/migrations"
)

// backend is the set of stores selected by the config.
type backend struct {
	users     app.UserRepository
	games     app.GameRepository
	questions app.QuestionStore
	pool      app.QuestionPool
	sessions  app.SessionRepository
	admins    adminSetter
	// persistent is false when everything lives in process memory.
	persistent bool

	closers []func()
}

type adminSetter interface {
	SetAdmin(ctx context.Context, id int64, admin bool) error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend picks SQL or memory storage, Postgres or store-backed question
// loading, and Redis or memory caches, falling back to memory for anything
// not configured.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	var loader memory.QuestionLoader

	switch cfg.Database.Driver {
	case "":
		log.Printf("no database configured, keeping everything in memory")
		if msg := memoryModeWarning(cfg); msg != "" {
			log.Printf("warning: %s", msg)
		}
		users := memory.NewUserStore()
		questions := memory.NewQuestionStore()
		b.users, b.games, b.questions, b.admins = users, memory.NewGameStore(users), questions, users
		loader = questions
	default:
		db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if _, err := migrations.Apply(ctx, db); err != nil {
			b.Close()
			return nil, err
		}
		users := sqlstore.NewUserStore(db)
		questions := sqlstore.NewQuestionStore(db)
		b.users, b.games, b.questions, b.admins = users, sqlstore.NewGameStore(db), questions, users
		b.persistent = true
		loader = questions

		if cfg.Database.Driver == sqlstore.DriverPostgres {
			pool, err := pgxpool.Connect(ctx, cfg.Database.DSN)
			if err != nil {
				b.Close()
				return nil, fmt.Errorf("connect pgx pool: %w", err)
			}
			b.closers = append(b.closers, pool.Close)
			loader = pgloader.NewQuestionLoader(pool)
		}
	}

	questionTTL := config.TTLDuration(cfg.Questions.CacheTTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	sessionTTL := config.TTLDuration(cfg.Session.TTL, 14*24*time.Hour)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.pool = redisstore.NewQuestionPool(client, loader, questionTTL)
		b.sessions = redisstore.NewSessionStore(client, sessionTTL)
	} else {
		b.pool = memory.NewQuestionPool(loader, questionTTL)
		b.sessions = memory.NewSessionStore(sessionTTL)
	}
	return b, nil
}

// memoryModeWarning explains why a memory-only server would be unplayable.
// The import and admin commands need a database, so the seed file is the
// only way questions reach an in-memory server.
func memoryModeWarning(cfg config.Config) string {
	if cfg.Database.Driver != "" || cfg.Questions.SeedFile != "" {
		return ""
	}
	return "questions.seed_file is not set; the in-memory question store stays empty and no game can start"
}
