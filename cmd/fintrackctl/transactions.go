package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/form"
	"fintrack/internal/services"
)

func addCmd(tracker func() *services.Tracker) *cobra.Command {
	var (
		txType   string
		amount   string
		date     string
		category string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  fintrackctl add --type income --amount 100 --category Salary
  fintrackctl add --type expense --amount 12.50 --date 2024-01-02 --category 2 --notes "lunch"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := tracker()
			cats := t.Categories()

			typ, err := core.ParseTxType(txType)
			if err != nil {
				return err
			}
			f := form.New()
			f.SetType(typ, cats)
			f.Amount = amount
			f.Date = date
			f.Notes = notes
			f.CategoryID = resolveCategory(category, f.Choices(cats))

			payload, err := f.Submit(cats)
			if err != nil {
				return err
			}
			tx, err := t.AddTransaction(cmd.Context(), payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d: %s %s (%s)\n",
				successStyle.Render("Added transaction"),
				tx.ID,
				tx.Type.Label(),
				amountStyle(tx.Type).Render(tx.Amount.Dollars()),
				core.CategoryName(cats, tx.CategoryID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Income), "transaction type (income or expense)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id or name")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

// resolveCategory maps a category name to its id among the offered choices.
// Ids and unknown names are passed through for the form to validate.
func resolveCategory(value string, choices []core.Category) string {
	value = strings.TrimSpace(value)
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return value
	}
	for _, c := range choices {
		if strings.EqualFold(c.Name, value) {
			return strconv.FormatInt(c.ID, 10)
		}
	}
	return value
}

func listCmd(tracker func() *services.Tracker) *cobra.Command {
	var filterType, filterCategory string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := tracker().ViewWith(core.ParseFilter(filterType, filterCategory))
			out := cmd.OutOrStdout()

			if len(view.Transactions) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No transactions found."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Date"),
				headerStyle.Render("Type"),
				headerStyle.Render("Category"),
				headerStyle.Render("Amount"),
				headerStyle.Render("Notes"))
			for _, tx := range view.Transactions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					tx.ID,
					tx.Date,
					tx.Type.Label(),
					core.CategoryName(view.Categories, tx.CategoryID),
					amountStyle(tx.Type).Render(tx.Amount.Dollars()),
					tx.Notes)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, totalsLine(view.Totals))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterType, "type", "all", "filter by type (all, income, expense)")
	cmd.Flags().StringVar(&filterCategory, "category", "all", "filter by category id")
	return cmd
}

func totalsLine(t core.Totals) string {
	return fmt.Sprintf("Income %s  Expenses %s  Balance %s",
		incomeStyle.Render(t.Income.Dollars()),
		expenseStyle.Render(t.Expense.Dollars()),
		balanceStyle.Render(t.Balance.Dollars()))
}

func deleteCmd(tracker func() *services.Tracker) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			deleted, err := tracker().DeleteTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render(fmt.Sprintf("No transaction with id %d", id)))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", successStyle.Render("Deleted transaction"), id)
			return nil
		},
	}
}
