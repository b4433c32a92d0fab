package index

import (
	"fmt"

	"cohort-indexer/core/transport"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store creates index handles over a shared database and transport.
type Store struct {
	db      *gorm.DB
	client  transport.Client
	logger  *zap.Logger
	cfg     Config
	backoff transport.BackoffConfig
}

// NewStore creates a new store.
func NewStore(db *gorm.DB, client transport.Client, logger *zap.Logger, cfg Config, backoff transport.BackoffConfig) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		client:  client,
		logger:  logger,
		cfg:     cfg,
		backoff: backoff,
	}
}

// Migrate creates or updates the index tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&sourceRow{}, &documentRow{}); err != nil {
		return fmt.Errorf("failed to migrate index tables: %w", err)
	}
	return nil
}

// Index returns a closed handle for the named index.
func (s *Store) Index(name string) *Index {
	return &Index{
		store:   s,
		name:    name,
		tables:  make(map[string]Definition),
		schemas: make(map[string]*jsonschema.Schema),
		jobs:    make(map[string]*job),
		logger:  s.logger.With(zap.String("index", name)),
	}
}
