package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-recap/internal/domain"
	"github.com/naka-gawa/github-recap/internal/usecase"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [recap.json | URL]",
	Short: "Prints the headline numbers and achievements of a recap",
	Long: `Loads a recap document and prints its totals, derived statistics and
achievements as tables. Without an argument the configured data file inside
the web root is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer syncLogger(logger)

		source, name, err := recapSource(firstArg(args), logger)
		if err != nil {
			return err
		}
		recap, insights, err := usecase.NewAnalyzer(source, logger).Analyze(cmd.Context(), name)
		if err != nil {
			return err
		}
		return writeSummary(cmd.OutOrStdout(), recap, insights)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var headingColor = color.New(color.FgCyan, color.Bold)

func writeSummary(w io.Writer, recap *domain.Recap, insights domain.Insights) error {
	headingColor.Fprintf(w, "%s · %d\n", recap.Meta.User, recap.Meta.Year)

	totals := [][]string{
		{"Commits", usecase.FormatNumber(recap.Totals.Commits)},
		{"Pull requests", usecase.FormatNumber(recap.Totals.PullRequests)},
		{"Issues", usecase.FormatNumber(recap.Totals.Issues)},
		{"Reviews", usecase.FormatNumber(recap.Totals.Reviews)},
		{"Overall", usecase.FormatNumber(recap.Totals.Overall)},
		{"Longest streak", usecase.FormatNumber(recap.Calendar.LongestStreak) + " days"},
		{"Merge rate", usecase.MergeRate(recap.PRStats.MergeRate)},
		{"Avg time to merge", usecase.OptionalHours(recap.PRStats.AvgTimeToMergeHours)},
		{"Repositories", usecase.FormatNumber(insights.Stats.TotalRepos)},
		{"Avg per day", insights.Stats.AvgPerDay},
		{"Most active month", insights.Stats.MostActiveMonth},
	}
	for _, d := range insights.Stats.Distribution {
		totals = append(totals, []string{d.Label + " share", usecase.FormatPercent(d.Percent) + "%"})
	}
	if err := writeTable(w, []string{"Metric", "Value"}, totals); err != nil {
		return err
	}

	if len(insights.Achievements) == 0 {
		_, err := fmt.Fprintln(w, color.HiBlackString("No achievements unlocked."))
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	var badges [][]string
	for _, a := range insights.Achievements {
		badges = append(badges, []string{a.Icon, green(a.Label), a.Value})
	}
	return writeTable(w, []string{"", "Achievement", "Threshold"}, badges)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
