// Package blacklist excludes known-bad source addresses from a crawl.
//
// The list is loaded once at startup from a YAML file and is immutable for the
// rest of the run. Entries are compared in normalized form, so a trailing
// slash on either side does not matter.
//
// The filter is applied at three points:
//   - before attaching a source to an index (skipped with a notice)
//   - before seeding a pass, removing sources a previous run registered
//   - before persisting a portal record
//
// # File format
//
//	addresses:
//	  - dat://3f2a.../
//	  - dat://9bd1...
package blacklist
