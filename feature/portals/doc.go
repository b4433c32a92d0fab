// Package portals derives portal records from cohort indexes and publishes them.
//
// A portal record is the flat triple {cohortName, name, url} taken from one
// portal document of a cohort index. Records are identified by the portal
// address without its scheme, so `dat://abc` and `dat://abc/` share one record.
//
// # Persistence
//
// The Persister writes through a Sink and only when something changed: a record
// is saved when no prior record exists for its identity or when any field
// differs. A rerun against unchanged upstream data writes nothing. Blacklisted
// portal addresses are never written.
//
// Two sinks are provided:
//   - FileSink: one JSON file per record under <dir>/portals/.
//   - ObjectSink: one object per record under <prefix>/ in a MinIO/S3 bucket.
//
// # Summary
//
// RenderSummary prints every record as an aligned plain-text table sorted by
// name, then cohort name. Aggregate reads records published by another crawler
// (its /portals/*.json files) through the index store instead of the local sink.
//
// # HTTP Endpoints
//
//   - GET /portals : All records, sorted.
//   - GET /portals/summary : The text table.
//   - GET /portals/:id : One record by identity.
package portals
