package main

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/adapter/memory"
	"github.com/YelzhanWeb/dinehub/internal/adapter/natskv"
	"github.com/YelzhanWeb/dinehub/internal/adapter/postgres"
	"github.com/YelzhanWeb/dinehub/internal/config"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

// store bundles the persistence picked by store.driver. Sessions always
// live in process memory.
type store struct {
	orders   interfaces.OrderRepository
	sequence interfaces.SequenceGenerator
	sessions interfaces.SessionStore
	ping     func(ctx context.Context) error
	close    func()
}

func openStore(ctx context.Context, cfg *config.Config, lgr logger.Logger) (*store, error) {
	st := &store{
		sessions: memory.NewSessionStore(),
		close:    func() {},
	}

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		st.orders = postgres.NewOrderRepository(db)
		st.sequence = postgres.NewSequence(db, time.Now)
		st.ping = db.Ping
		st.close = db.Close

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]any{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

	case config.StoreNATS:
		buckets, err := natskv.Connect(ctx, cfg.NATS)
		if err != nil {
			return nil, err
		}
		st.orders = natskv.NewOrderRepository(buckets.Orders)
		st.sequence = natskv.NewSequence(buckets.Counters, time.Now)
		st.close = buckets.Close

		lgr.Info("nats_connected", "Connected to NATS key-value store", "startup", map[string]any{
			"url":    cfg.NATS.URL,
			"bucket": cfg.NATS.OrdersBucket,
		})

	case config.StoreMemory:
		st.orders = memory.NewOrderRepository()
		st.sequence = memory.NewSequence(time.Now)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return st, nil
}
