package portals

import (
	"context"
	"fmt"

	"cohort-indexer/core/storage"
)

// NewSink builds the sink selected by cfg.Backend. The s3 backend makes sure
// the bucket exists.
func NewSink(ctx context.Context, cfg Config, storageCfg storage.Config) (Sink, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileSink(cfg.Dir), nil
	case BackendS3:
		client, err := storage.NewClient(storageCfg)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, storageCfg.Bucket, storageCfg.Region); err != nil {
			return nil, err
		}
		return NewObjectSink(client, storageCfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported output backend: %s", cfg.Backend)
	}
}
