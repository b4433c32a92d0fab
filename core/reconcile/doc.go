// Package reconcile drives one reconciliation pass over a set of sources.
//
// A pass attaches every address to an index concurrently, then waits a
// bounded time for the index to report on each of them. Two independent
// channels feed per-address state:
//
//  1. The synchronous outcome of each attach call.
//  2. Asynchronous index events (indexed, source-found, source-error,
//     index-error) delivered while the pass is settling.
//
// Attaching successfully does not mean a source is indexed, so both channels
// update the same Fetcher record and the pass counts converge on it.
//
// # Components
//
//   - Tracker: an actor goroutine that owns the Fetcher map. All mutation
//     goes through its inbox, so the map has exactly one writer.
//   - Dispatcher: translates index events into tracker updates, classifying
//     failures as timeouts or other errors.
//   - Settle: polls aggregate counts once per tick and stops when every
//     address is indexed, timed out or errored, or when the window elapses.
//   - Pass: the per-pass context object tying the above to one index.
//
// # Classification precedence
//
// Updates may arrive duplicated or out of order. A Fetcher is in at most one
// terminal state:
//   - indexed wins: an indexed or source-found notification clears an earlier
//     failure, and later failures never demote an indexed Fetcher
//   - among failures, the first classification sticks
//
// # Integrity mismatches
//
// Events for addresses the current pass does not track (for example sources
// resumed from an earlier run) are logged as warnings and otherwise ignored.
package reconcile
