package portals

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// RenderSummary writes records as an aligned table sorted by name, then
// cohort name. The input slice is not modified.
func RenderSummary(w io.Writer, records []Record) error {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	SortRecords(sorted)

	nameWidth := runewidth.StringWidth("NAME")
	cohortWidth := runewidth.StringWidth("COHORT")
	for _, r := range sorted {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.Name))
		cohortWidth = max(cohortWidth, runewidth.StringWidth(r.CohortName))
	}

	bw := bufio.NewWriter(w)
	row := func(name, cohort, url string) {
		line := runewidth.FillRight(name, nameWidth) + columnGap +
			runewidth.FillRight(cohort, cohortWidth) + columnGap + url
		bw.WriteString(strings.TrimRight(line, " "))
		bw.WriteByte('\n')
	}

	row("NAME", "COHORT", "URL")
	for _, r := range sorted {
		row(r.Name, r.CohortName, r.URL)
	}
	return bw.Flush()
}
