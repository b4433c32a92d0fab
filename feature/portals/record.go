package portals

import (
	"sort"

	"cohort-indexer/core/address"
	"cohort-indexer/core/index"
)

// Record is the published form of one portal.
type Record struct {
	CohortName string `json:"cohortName"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

// ID returns the record identity: the portal address without its scheme.
func (r Record) ID() string {
	return address.Identity(r.URL)
}

// FromDocument derives a record from a portal document of a cohort index.
// The url is the document's owning source address.
func FromDocument(cohort string, doc index.Document) Record {
	return Record{
		CohortName: cohort,
		Name:       doc.String("name"),
		URL:        address.Normalize(doc.Source),
	}
}

// fromPublished reads a record back from a published /portals/*.json document.
func fromPublished(doc index.Document) Record {
	return Record{
		CohortName: doc.String("cohortName"),
		Name:       doc.String("name"),
		URL:        doc.String("url"),
	}
}

// SortRecords orders records by name, cohort name, then url.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.CohortName != b.CohortName {
			return a.CohortName < b.CohortName
		}
		return a.URL < b.URL
	})
}
