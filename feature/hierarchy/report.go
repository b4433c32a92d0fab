package hierarchy

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"cohort-indexer/core/reconcile"
	"cohort-indexer/feature/portals"

	"github.com/mattn/go-runewidth"
)

// CohortReport is the outcome of one cohort pass.
type CohortReport struct {
	Name    string             `json:"name"`
	Address string             `json:"address"`
	Pass    *reconcile.Summary `json:"pass,omitempty"`
	Persist portals.Stats      `json:"persist"`
	// Removed lists blacklisted sources pruned from the cohort index.
	Removed []string `json:"removed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Report is the outcome of one crawl.
type Report struct {
	RunID    string             `json:"run_id"`
	Started  time.Time          `json:"started"`
	Finished time.Time          `json:"finished"`
	Master   *reconcile.Summary `json:"master,omitempty"`
	Lists    *reconcile.Summary `json:"cohort_lists,omitempty"`
	// NotCohorts lists level one documents without the cohort prefix.
	NotCohorts []string       `json:"not_cohorts,omitempty"`
	Cohorts    []CohortReport `json:"cohorts"`
}

// Written returns the number of records written across cohorts.
func (r *Report) Written() int {
	n := 0
	for _, c := range r.Cohorts {
		n += c.Persist.Written
	}
	return n
}

// Render writes a per-pass table of the report.
func (r *Report) Render(w io.Writer) error {
	type line struct {
		pass, counts, persist, note string
	}
	counts := func(s *reconcile.Summary) string {
		if s == nil {
			return "-"
		}
		c := s.Counts
		return fmt.Sprintf("%d/%d indexed, %d timed out, %d errored", c.Indexed, c.Total, c.TimedOut, c.Errored)
	}
	converged := func(s *reconcile.Summary) string {
		if s == nil || s.Converged {
			return ""
		}
		return fmt.Sprintf("%d unresolved", len(s.Unresolved()))
	}

	lines := []line{
		{"PASS", "SOURCES", "WRITTEN", "NOTE"},
		{MasterIndex, counts(r.Master), "-", converged(r.Master)},
		{CohortsIndex, counts(r.Lists), "-", converged(r.Lists)},
	}
	for _, c := range r.Cohorts {
		note := converged(c.Pass)
		if c.Error != "" {
			note = c.Error
		}
		lines = append(lines, line{c.Name, counts(c.Pass), fmt.Sprintf("%d", c.Persist.Written), note})
	}

	var wPass, wCounts, wPersist int
	for _, l := range lines {
		wPass = max(wPass, runewidth.StringWidth(l.pass))
		wCounts = max(wCounts, runewidth.StringWidth(l.counts))
		wPersist = max(wPersist, runewidth.StringWidth(l.persist))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "run %s (%s)\n", r.RunID, r.Finished.Sub(r.Started).Round(time.Millisecond))
	for _, l := range lines {
		fmt.Fprintf(bw, "%s  %s  %s  %s\n",
			runewidth.FillRight(l.pass, wPass),
			runewidth.FillRight(l.counts, wCounts),
			runewidth.FillRight(l.persist, wPersist),
			l.note,
		)
	}
	return bw.Flush()
}
