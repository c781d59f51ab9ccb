package results

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"dev/bravebird/login-e2e/pkg/models"
)

// WriteReport prints the rows of a CSV result log as an aligned table,
// followed by a pass/fail tally. The first row must be the header.
func WriteReport(out io.Writer, rows [][]string) error {
	if len(rows) == 0 {
		return fmt.Errorf("result log is empty")
	}

	header := rows[0]
	if len(header) != len(Header) {
		return fmt.Errorf("malformed result log: header has %d columns, want %d", len(header), len(Header))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", header[0], header[1], header[4], header[5], header[6])

	passed, failed := 0, 0
	for _, row := range rows[1:] {
		if len(row) != len(Header) {
			return fmt.Errorf("malformed result row: %v", row)
		}
		outcome := row[4]
		if outcome == string(models.OutcomeSuccess) {
			passed++
			outcome = color.GreenString(outcome)
		} else {
			failed++
			outcome = color.RedString(outcome)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], outcome, row[5], row[6])
	}

	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\n%d passed, %d failed\n", passed, failed)
	return err
}

// ReportRows renders results the way ReadAll returns the CSV log: the
// header first, then one row per result.
func ReportRows(results []models.Result) [][]string {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, Header)
	for _, r := range results {
		rows = append(rows, r.Row())
	}
	return rows
}
