package portals

import (
	"context"
	"fmt"

	"cohort-indexer/core/address"
	"cohort-indexer/core/index"
	"cohort-indexer/core/reconcile"

	"go.uber.org/zap"
)

const (
	// AggregateIndex is the index holding records published by a crawler.
	AggregateIndex = "allPortals"
	aggregateOrder = "name+cohortName"
)

// AggregateDefinition matches published record files.
var AggregateDefinition = index.Definition{
	Schema: `{
		"$schema": "http://json-schema.org/draft-06/schema#",
		"type": "object",
		"properties": {
			"cohortName": {"type": "string"},
			"name": {"type": "string"},
			"url": {"type": "string"}
		},
		"required": ["name"]
	}`,
	Indexes:      []string{"cohortName", "name", "url", "cohortName+name", aggregateOrder},
	FilePatterns: []string{"/portals/*.json"},
}

// Aggregate attaches the address publishing /portals/*.json, settles, and
// returns its records ordered by name then cohort name. Documents of other
// sources still registered on the index are ignored.
func Aggregate(ctx context.Context, store *index.Store, addr string, settle reconcile.SettleConfig, logger *zap.Logger) ([]Record, *reconcile.Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ix := store.Index(AggregateIndex)
	if err := ix.Define(AggregateIndex, AggregateDefinition); err != nil {
		return nil, nil, err
	}
	if err := ix.Open(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", AggregateIndex, err)
	}
	defer ix.Close()

	pass := &reconcile.Pass{Name: AggregateIndex, Index: ix, Logger: logger, Settle: settle}
	summary, err := pass.Run(ctx, []string{addr})
	if err != nil {
		return nil, nil, err
	}

	docs, err := ix.Query(AggregateIndex).OrderBy(aggregateOrder).All(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read %s: %w", AggregateIndex, err)
	}
	source := address.Normalize(addr)
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		if doc.Source != source {
			continue
		}
		records = append(records, fromPublished(doc))
	}
	return records, summary, nil
}
