package portals_test

import (
	"context"
	"testing"
	"time"

	"cohort-indexer/core/database"
	"cohort-indexer/core/index"
	"cohort-indexer/core/reconcile"
	"cohort-indexer/core/transport"
	"cohort-indexer/feature/portals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var aggregateSettle = reconcile.SettleConfig{Window: 3 * time.Second, Tick: 10 * time.Millisecond}

func newAggregateStore(t *testing.T, peers *transport.Memory) *index.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	store := index.NewStore(db, peers, zap.NewNop(), index.Config{AttachTimeoutSeconds: 1, ResumeOnOpen: true}, transport.BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
		MaxAttempts:  2,
	})
	require.NoError(t, store.Migrate())
	return store
}

func TestAggregate_ReadsPublishedRecords(t *testing.T) {
	peers := transport.NewMemory()
	store := newAggregateStore(t, peers)

	const published = "dat://published"
	peers.PutFile(published, "/portals/p2.json", []byte(`{"cohortName":"cohort-y","name":"two","url":"dat://p2"}`))
	peers.PutFile(published, "/portals/p1b.json", []byte(`{"cohortName":"cohort-y","name":"one","url":"dat://p1b"}`))
	peers.PutFile(published, "/portals/p1a.json", []byte(`{"cohortName":"cohort-x","name":"one","url":"dat://p1a"}`))
	peers.PutFile(published, "/index.txt", []byte("not a record"))

	records, summary, err := portals.Aggregate(context.Background(), store, published+"/", aggregateSettle, zap.NewNop())
	require.NoError(t, err)

	require.NotNil(t, summary)
	assert.True(t, summary.Converged)
	assert.Equal(t, 1, summary.Counts.Indexed)
	assert.Equal(t, []portals.Record{
		{CohortName: "cohort-x", Name: "one", URL: "dat://p1a"},
		{CohortName: "cohort-y", Name: "one", URL: "dat://p1b"},
		{CohortName: "cohort-y", Name: "two", URL: "dat://p2"},
	}, records)
}

func TestAggregate_IgnoresOtherRegisteredSources(t *testing.T) {
	peers := transport.NewMemory()
	store := newAggregateStore(t, peers)

	peers.PutFile("dat://old", "/portals/a.json", []byte(`{"cohortName":"cohort-x","name":"stale","url":"dat://a"}`))
	peers.PutFile("dat://new", "/portals/b.json", []byte(`{"cohortName":"cohort-x","name":"fresh","url":"dat://b"}`))

	_, _, err := portals.Aggregate(context.Background(), store, "dat://old", aggregateSettle, zap.NewNop())
	require.NoError(t, err)

	records, _, err := portals.Aggregate(context.Background(), store, "dat://new", aggregateSettle, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []portals.Record{{CohortName: "cohort-x", Name: "fresh", URL: "dat://b"}}, records)
}
