package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/services"
)

const barWidth = 30

func summaryCmd(tracker func() *services.Tracker) *cobra.Command {
	var filterType, filterCategory string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := tracker().ViewWith(core.ParseFilter(filterType, filterCategory))
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterType, "type", "all", "filter by type (all, income, expense)")
	cmd.Flags().StringVar(&filterCategory, "category", "all", "filter by category id")
	return cmd
}

// renderSummary draws the pie shares as horizontal bars in the chart colors.
func renderSummary(view services.View) string {
	pie := chart.NewPie(view.Totals)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Finance Tracker"))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d of %d transactions", len(view.Transactions), view.All)))
	b.WriteString("\n\n")

	for _, s := range pie.Slices {
		filled := int(s.Percent / 100 * barWidth)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", filled)) +
			subtleStyle.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&b, "%-9s %s %10s %5.1f%%\n", s.Label, bar, s.Value.Dollars(), s.Percent)
	}
	fmt.Fprintf(&b, "%-9s %s", pie.Balance.Label, balanceStyle.Render(pie.Balance.Value.Dollars()))

	return boxStyle.Render(b.String())
}

func exportCmd(tracker func() *services.Tracker) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every transaction as CSV",
		Long:  `Write all transactions, ignoring any filter, as CSV to a file or to stdout ("-").`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := tracker()
			if output == "-" {
				return t.ExportCSV(cmd.Context(), cmd.OutOrStdout())
			}

			if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, export.Filename)
			}
			txs := t.Transactions()
			if err := export.WriteFileAtomic(output, txs, t.Categories()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d transactions to %s\n",
				successStyle.Render("Exported"), len(txs), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", export.Filename, `destination file or directory, "-" for stdout`)
	return cmd
}
