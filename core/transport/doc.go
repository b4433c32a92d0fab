// Package transport fetches documents from peer-addressed sources.
//
// The peer network itself is not implemented here. Sources are reached through
// an HTTP gateway that exposes each source key as a path prefix:
//
//	GET {gateway}/{key}/         -> {"version": 12, "files": ["/portal.json"]}
//	GET {gateway}/{key}{path}    -> raw file contents
//
// # Errors
//
// Failures are classified so callers can tell slow peers from broken ones:
//   - ErrTimeout: the peer did not answer within the deadline
//   - ErrNotFound: the gateway does not currently know the source
//
// IsTimeout recognizes ErrTimeout as well as raw context deadlines and net
// timeouts that were not wrapped by this package.
//
// # Implementations
//
//   - HTTPClient: production gateway client.
//   - Memory: in-process peer set used by tests.
package transport
