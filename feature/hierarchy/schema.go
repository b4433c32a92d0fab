package hierarchy

import "cohort-indexer/core/index"

const (
	// MasterIndex holds the master list document.
	MasterIndex = "masterCohort"
	// CohortsIndex holds the cohort list documents.
	CohortsIndex = "cohorts"
	// PortalsTable is the table of every per-cohort index.
	PortalsTable = "portals"
)

// PortalDefinition describes a portal document: a name and the addresses it
// links to. The same shape is used at every level.
var PortalDefinition = index.Definition{
	Schema: `{
		"$schema": "http://json-schema.org/draft-06/schema#",
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"port": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["name"]
	}`,
	Indexes:      []string{"name"},
	FilePatterns: []string{"/portal.json"},
}

// Cohort is a cohort list document.
type Cohort struct {
	Name    string
	Address string
	Members []string
}
