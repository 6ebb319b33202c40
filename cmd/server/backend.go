package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/limiter"
	"github.com/and161185/todo-keeper/internal/migrate"
	"github.com/and161185/todo-keeper/internal/repository"
	"github.com/and161185/todo-keeper/internal/repository/mongodb"
	"github.com/and161185/todo-keeper/internal/repository/postgres"
)

// backend is the storage a running server talks to.
type backend struct {
	users  repository.UserRepository
	todos  repository.TodoRepository
	pinger repository.Pinger
	lim    limiter.Limiter // nil when throttling is disabled
	close  func()
}

// openBackend connects to the configured store and prepares its schema:
// migrations for Postgres, indexes for MongoDB.
func openBackend(ctx context.Context, cfg *config, log *zap.Logger) (*backend, error) {
	switch cfg.Store {
	case storePostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return openMongo(ctx, cfg, log)
	}
}

func openPostgres(ctx context.Context, cfg *config, log *zap.Logger) (*backend, error) {
	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	b := &backend{
		users:  postgres.NewUserRepo(db),
		todos:  postgres.NewTodoRepo(db),
		pinger: db,
		close:  db.Close,
	}
	if p := cfg.policy(); p.Enabled() {
		b.lim = limiter.NewPG(db.Pool, p)
	}
	log.Info("storage ready", zap.String("store", storePostgres))
	return b, nil
}

func openMongo(ctx context.Context, cfg *config, log *zap.Logger) (*backend, error) {
	db, err := mongodb.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	closeDB := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Warn("mongo disconnect", zap.Error(err))
		}
	}
	if err := mongodb.EnsureIndexes(ctx, db.Database); err != nil {
		closeDB()
		return nil, err
	}
	b := &backend{
		users:  mongodb.NewUserRepo(db.Database),
		todos:  mongodb.NewTodoRepo(db.Database),
		pinger: db,
		close:  closeDB,
	}
	if p := cfg.policy(); p.Enabled() {
		b.lim = limiter.NewMongo(db.Database, p)
	}
	log.Info("storage ready", zap.String("store", storeMongo), zap.String("db", cfg.MongoDB))
	return b, nil
}
