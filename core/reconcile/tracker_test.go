package reconcile

import (
	"errors"
	"fmt"
	"testing"

	"cohort-indexer/core/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func startTracker(t *testing.T, addrs ...string) *Tracker {
	t.Helper()
	tr := NewTracker(addrs, nil)
	tr.Start()
	t.Cleanup(tr.Stop)
	return tr
}

func timeoutFailure(stage Stage) *Failure {
	return Classify(stage, fmt.Errorf("resolve: %w", transport.ErrTimeout))
}

func otherFailure(stage Stage) *Failure {
	return Classify(stage, errors.New("boom"))
}

func TestNewTracker_SeedsInOrderAndDedupes(t *testing.T) {
	tr := NewTracker([]string{"dat://b/", "dat://a", " dat://b ", ""}, nil)

	fetchers := tr.Fetchers()
	require.Len(t, fetchers, 2)
	assert.Equal(t, 2, tr.Total())
	assert.Equal(t, 1, fetchers[0].Index)
	assert.Equal(t, "dat://b", fetchers[0].NormalizedAddress)
	assert.Equal(t, "dat://b/", fetchers[0].RawAddress)
	assert.Equal(t, 2, fetchers[1].Index)
	assert.Equal(t, "dat://a", fetchers[1].NormalizedAddress)
	assert.Equal(t, IndexUnknown, fetchers[1].Indexed)
}

func TestTracker_AttachedIsNotResolved(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateAttached, Address: "dat://a/"})

	c := tr.Counts()
	assert.Equal(t, Counts{Total: 1, Fetched: 1}, c)
	assert.False(t, c.Settled())
}

func TestTracker_IndexedWinsOverLaterFailure(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://a", Version: 3})
	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: timeoutFailure(StageSource)})

	snap := tr.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, IndexDone, snap[0].Indexed)
	assert.False(t, snap[0].TimedOut)
	assert.Equal(t, int64(3), snap[0].LastVersion)
	assert.Equal(t, Counts{Total: 1, Fetched: 1, Indexed: 1}, tr.Counts())
}

func TestTracker_IndexedClearsEarlierTimeout(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: timeoutFailure(StageAttach)})
	assert.Equal(t, Counts{Total: 1, TimedOut: 1}, tr.Counts())

	tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://a", Version: 1})

	snap := tr.Snapshot()
	assert.Equal(t, IndexDone, snap[0].Indexed)
	assert.False(t, snap[0].TimedOut)
	assert.Error(t, snap[0].Cause)
	assert.Equal(t, Counts{Total: 1, Fetched: 1, Indexed: 1}, tr.Counts())
}

func TestTracker_SourceFoundClearsError(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: otherFailure(StageAttach)})
	tr.Apply(Update{Kind: UpdateFound, Address: "dat://a", Version: 2})

	snap := tr.Snapshot()
	assert.Equal(t, IndexDone, snap[0].Indexed)
	assert.False(t, snap[0].Errored)
	assert.True(t, snap[0].Fetched)
}

func TestTracker_FirstFailureSticks(t *testing.T) {
	tr := startTracker(t, "dat://a")

	first := otherFailure(StageAttach)
	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: first})
	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: timeoutFailure(StageSource)})

	snap := tr.Snapshot()
	assert.True(t, snap[0].Errored)
	assert.False(t, snap[0].TimedOut)
	assert.Same(t, first, snap[0].Cause)
	assert.Equal(t, IndexUnknown, snap[0].Indexed)
}

func TestTracker_IndexFailureMarksIndexState(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://a", Failure: otherFailure(StageIndex)})

	snap := tr.Snapshot()
	assert.Equal(t, IndexFailed, snap[0].Indexed)
	assert.True(t, snap[0].Errored)
	assert.Equal(t, Counts{Total: 1, Errored: 1}, tr.Counts())
}

func TestTracker_UntrackedAddressIsIgnored(t *testing.T) {
	tr := startTracker(t, "dat://a")

	tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://zzz"})

	assert.Equal(t, Counts{Total: 1}, tr.Counts())
}

func TestTracker_EachFetcherCountedOnce(t *testing.T) {
	tr := startTracker(t, "dat://a", "dat://b", "dat://c", "dat://d")

	tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://a"})
	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://b", Failure: timeoutFailure(StageAttach)})
	tr.Apply(Update{Kind: UpdateFailed, Address: "dat://c", Failure: otherFailure(StageSource)})
	tr.Apply(Update{Kind: UpdateAttached, Address: "dat://d"})

	c := tr.Counts()
	assert.Equal(t, Counts{Total: 4, Fetched: 2, Indexed: 1, TimedOut: 1, Errored: 1}, c)
	assert.Equal(t, 3, c.Resolved())
	assert.LessOrEqual(t, c.Resolved(), c.Total)
}

func TestTracker_StopIsIdempotent(t *testing.T) {
	tr := NewTracker([]string{"dat://a"}, nil)
	tr.Start()
	tr.Stop()
	tr.Stop()

	assert.False(t, tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://a"}))
	assert.Equal(t, Counts{Total: 1}, tr.Counts())
	assert.Len(t, tr.Snapshot(), 1)
}

func TestTracker_SurvivesPanickingMessage(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	tr := NewTracker([]string{"dat://a"}, zap.New(core))
	tr.Start()
	t.Cleanup(tr.Stop)

	closed := make(chan Counts, 1)
	close(closed)
	tr.inbox <- countsRequest{reply: closed}

	tr.Apply(Update{Kind: UpdateIndexed, Address: "dat://a"})
	assert.Equal(t, 1, tr.Counts().Indexed)
	assert.Equal(t, 1, logs.FilterMessage("Tracker message panicked").Len())
}
