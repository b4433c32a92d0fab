package cmd

import (
	"context"
	"fmt"

	"cohort-indexer/core/blacklist"
	"cohort-indexer/core/config"
	"cohort-indexer/core/database"
	"cohort-indexer/core/index"
	"cohort-indexer/core/logger"
	"cohort-indexer/core/transport"
	"cohort-indexer/feature/hierarchy"
	"cohort-indexer/feature/portals"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	store     *index.Store
	blacklist *blacklist.Filter
	sink      portals.Sink
}

// newApp loads configuration and wires the index store, blacklist and sink.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect index database: %w", err)
	}

	client, err := transport.NewHTTPClient(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	store := index.NewStore(db, client, logg, cfg.Index, cfg.Transport.Backoff())
	if err := store.Migrate(); err != nil {
		return nil, err
	}

	bl, err := blacklist.Load(cfg.Blacklist.File)
	if err != nil {
		return nil, err
	}
	if bl.Len() > 0 {
		logg.Info("Blacklist loaded", zap.String("file", cfg.Blacklist.File), zap.Int("entries", bl.Len()))
		logg.Debug("Blacklisted addresses", zap.Strings("addresses", bl.Entries()))
	}

	sink, err := portals.NewSink(ctx, cfg.Output, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create output sink: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logg,
		db:        db,
		store:     store,
		blacklist: bl,
		sink:      sink,
	}, nil
}

func (a *app) resolver() *hierarchy.Resolver {
	persister := portals.NewPersister(a.sink, a.blacklist, a.logger)
	return hierarchy.NewResolver(a.store, persister, a.blacklist, a.cfg.Crawl, a.logger)
}

// close releases the database connection and flushes the logger.
func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
