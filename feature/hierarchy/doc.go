// Package hierarchy crawls the three-level cohort hierarchy.
//
// A crawl resolves, in order:
//
//  1. The master list: index "masterCohort" attaches the single master
//     address. Its portal document lists cohort list addresses in "port".
//  2. The cohort lists: index "cohorts" attaches every listed address. Only
//     documents whose name starts with the cohort prefix ("cohort-") are
//     cohorts; everything else is logged and skipped.
//  3. Each cohort, one at a time: an index named after the cohort is opened,
//     registered blacklisted sources are removed, every member address is
//     attached, the pass settles, and the resulting portal documents are
//     persisted through portals.Persister before the index is closed.
//
// Each level is a reconcile.Pass. Failures of individual addresses never abort
// a crawl; only an unresolvable master list does (ErrMasterUnresolved).
//
// # HTTP Endpoints
//
//   - GET /crawl/status : Whether a crawl is running and the last report.
//   - POST /crawl : Start a crawl in the background (409 when one is running).
package hierarchy
