package reporting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/conductor-ci/conductor/types"
)

// RenderSummaryTable renders the console results table: one section per
// category with per-test rows and a totals footer. It is printed even for
// partial runs aborted by fail-fast.
func RenderSummaryTable(suite *types.SuiteResult) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Test Results: %s (%.1fs)", suite.SuiteName, suite.Duration.Seconds()))

	t.AppendHeader(table.Row{"Category", "Test", "Duration", "Status", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Category", AutoMerge: true},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	categories, grouped := suite.ResultsByCategory()
	for _, category := range categories {
		results := grouped[category]
		for i, r := range results {
			prefix := "├── "
			if i == len(results)-1 {
				prefix = "└── "
			}
			t.AppendRow(table.Row{
				category,
				prefix + r.FullName(),
				fmt.Sprintf("%.1fs", r.Duration.Seconds()),
				statusString(r.Status),
				sanitize(firstLine(r.ErrorMessage)),
			})
		}
		t.AppendSeparator()
	}

	switch suite.Status() {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", suite.TotalTests()),
		fmt.Sprintf("%.1fs", suite.Duration.Seconds()),
		statusString(suite.Status()),
		fmt.Sprintf("%d passed, %d failed, %d errored, %d skipped",
			suite.PassedTests(), suite.FailedTests(), suite.ErroredTests(), suite.SkippedTests()),
	})

	return t.Render() + "\n"
}

func statusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	case types.TestStatusError:
		return "✗ error"
	default:
		return "✗ fail"
	}
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
