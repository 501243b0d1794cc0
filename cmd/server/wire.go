package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"dvi/internal/audit"
	httpapi "dvi/internal/http"
	"dvi/internal/location"
	"dvi/internal/person"
	"dvi/internal/platform/config"
	"dvi/internal/platform/postgres"
	"dvi/internal/platform/redis"
	"dvi/internal/platform/registryhttp"
	"dvi/internal/storage"
	"dvi/internal/storage/memory"
	pgstore "dvi/internal/storage/postgres"
)

// auditStore is a storage.Store whose outbox the relay can drain. Both
// backends satisfy it.
type auditStore interface {
	storage.Store
	audit.Outbox
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type infra struct {
	store   auditStore
	db      *sql.DB
	redis   *redis.Client
	journal location.Journal
	health  map[string]httpapi.Pinger
	closers []func() error
}

func (i *infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		_ = i.closers[j]()
	}
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{health: make(map[string]httpapi.Pinger)}

	switch cfg.Database.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			in.Close()
			return nil, err
		}
		in.db = db
		in.store = pgstore.New(db, pgstore.WithTxTimeout(cfg.Database.TxTimeout))
	default:
		in.store = memory.New()
	}
	in.health["store"] = in.store

	switch cfg.Tracker.Backend {
	case config.TrackerPostgres:
		in.journal = location.NewPostgresJournal(in.db)
	case config.TrackerSQLite:
		j, err := location.OpenSQLiteJournal(ctx, cfg.Tracker.SQLitePath)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.closers = append(in.closers, j.Close)
		in.journal = j
	default:
		in.journal = location.NewMemoryJournal()
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		in.redis = rc
		in.closers = append(in.closers, rc.Close)
		in.health["redis"] = pingFunc(rc.Health)
	}

	log.Info("infrastructure ready",
		"store", cfg.Database.Store,
		"tracker", cfg.Tracker.Backend,
		"redis", rc != nil,
	)
	return in, nil
}

// buildAdapters picks the HTTP registries when URLs are configured and the
// permissive static ones otherwise. Person lookups are cached in redis when
// it is available.
func buildAdapters(cfg config.Config, in *infra, log *slog.Logger) (*person.Adapter, *location.Resolver, *location.Tracker) {
	var persons person.Registry = person.NewStaticRegistry()
	if cfg.Registry.PersonURL != "" {
		client := registryhttp.New("person_registry", cfg.Registry.PersonURL, cfg.Registry.Timeout,
			registryhttp.WithLogger(log))
		var cache person.Cache = person.NewMemoryCache()
		if in.redis != nil {
			cache = person.NewRedisCache(in.redis.Client)
		}
		persons = person.NewCachingRegistry(person.NewHTTPRegistry(client), cache, cfg.Registry.CacheTTL)
	}

	var places location.Registry = location.NewStaticRegistry()
	if cfg.Registry.LocationURL != "" {
		client := registryhttp.New("location_registry", cfg.Registry.LocationURL, cfg.Registry.Timeout,
			registryhttp.WithLogger(log))
		places = location.NewHTTPRegistry(client)
	}

	return person.NewAdapter(persons, person.WithLogger(log), person.WithTimeout(cfg.Registry.Timeout)),
		location.NewResolver(places, cfg.Registry.Timeout, log),
		location.NewTracker(in.journal, location.WithTimeout(cfg.Tracker.Timeout), location.WithLogger(log))
}

// buildProducer publishes to Kafka when brokers are configured and to the
// log otherwise.
func buildProducer(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogProducer(log), nil
	}
	p, err := audit.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, err
	}
	if cfg.Kafka.EnsureTopics {
		if err := p.EnsureTopic(ctx, 3, 1); err != nil {
			p.Close()
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	return p, nil
}
