// Package report prints the end-of-run report: the JSON summary of every request made, tables of
// per-method statistics and individual requests, and the list of check results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/mottag/flow-checker/framework"
	"github.com/mottag/flow-checker/stats"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	skipColor    = color.New(color.FgCyan)
	headingColor = color.New(color.Bold)
)

var methodOrder = []string{stats.MethodGet, stats.MethodPost, stats.MethodPut, stats.MethodDelete}

// Options selects the optional parts of the report.
type Options struct {
	// Requests adds a row for every individual request.
	Requests bool
}

// Print writes the full report.
func Print(out io.Writer, outcomes []stats.RequestOutcome, results framework.Results, opts Options) error {
	summary := stats.Summarize(outcomes)

	headingColor.Fprintln(out, "Summary")
	if err := PrintSummaryJSON(out, summary); err != nil {
		return err
	}
	if summary.Aggregates != nil {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, "By method")
		PrintMethodTable(out, summary)
	}
	if opts.Requests && len(outcomes) != 0 {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, "Requests")
		PrintRequestTable(out, outcomes)
	}
	fmt.Fprintln(out)
	PrintResults(out, results)
	return nil
}

// PrintSummaryJSON writes the summary as indented JSON.
func PrintSummaryJSON(out io.Writer, summary stats.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode summary: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// PrintMethodTable writes one row per HTTP method that was used.
func PrintMethodTable(out io.Writer, summary stats.Summary) {
	table := newTable(out, []string{"Method", "Count", "Success", "Fail", "Avg ms", "P95 ms"})
	if summary.Aggregates != nil {
		for _, method := range methodsOf(summary.MethodStats) {
			ms := summary.MethodStats[method]
			table.Append([]string{
				method,
				strconv.Itoa(ms.Count),
				strconv.Itoa(ms.Success),
				strconv.Itoa(ms.Fail),
				formatMillis(ms.AvgMillis),
				formatMillis(ms.P95Millis),
			})
		}
	}
	table.Render()
}

// PrintRequestTable writes one row per request, in call order.
func PrintRequestTable(out io.Writer, outcomes []stats.RequestOutcome) {
	table := newTable(out, []string{"#", "Method", "Path", "Status", "Result", "ms"})
	for i, o := range outcomes {
		status := strconv.Itoa(o.StatusCode)
		if o.IsTransportFailure() {
			status = "-"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			o.Method,
			o.Path,
			status,
			resultLabel(o),
			formatMillis(o.ElapsedMillis),
		})
	}
	table.Render()
}

// PrintResults lists every check with its status and errors, followed by an overall verdict.
func PrintResults(out io.Writer, results framework.Results) {
	for _, r := range results.Checks {
		switch {
		case r.Skipped:
			skipColor.Fprintf(out, "SKIP  %s\n", r.ID)
		case len(r.Errors) == 0:
			passColor.Fprintf(out, "PASS  %s\n", r.ID)
		case r.Gating:
			failColor.Fprintf(out, "FAIL  %s\n", r.ID)
		default:
			warnColor.Fprintf(out, "WARN  %s\n", r.ID)
		}
		for _, err := range r.Errors {
			fmt.Fprintf(out, "        %s\n", err)
		}
	}
	fmt.Fprintln(out)
	if results.OK() {
		passColor.Fprintln(out, "All gating checks passed")
		if len(results.Warnings) != 0 {
			warnColor.Fprintf(out, "%d informational check(s) reported problems\n", len(results.Warnings))
		}
		return
	}
	failColor.Fprintf(out, "FAILED: %d gating check(s) failed\n", len(results.Failures))
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	return table
}

// methodsOf returns the methods in the usual CRUD order, followed by any others alphabetically.
func methodsOf(m map[string]stats.MethodStats) []string {
	var ret, others []string
	for _, method := range methodOrder {
		if _, ok := m[method]; ok {
			ret = append(ret, method)
		}
	}
	for method := range m {
		known := false
		for _, k := range methodOrder {
			known = known || k == method
		}
		if !known {
			others = append(others, method)
		}
	}
	sort.Strings(others)
	return append(ret, others...)
}

func resultLabel(o stats.RequestOutcome) string {
	switch {
	case o.OK:
		return "ok"
	case o.IsTransportFailure():
		return "error"
	default:
		return "fail"
	}
}

func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', 1, 64)
}
