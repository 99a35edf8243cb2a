package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func categoriesCmd(tracker func() *services.Tracker) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and add categories",
	}
	cmd.AddCommand(listCategoriesCmd(tracker))
	cmd.AddCommand(addCategoryCmd(tracker))
	return cmd
}

func listCategoriesCmd(tracker func() *services.Tracker) *cobra.Command {
	var txType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats := tracker().Categories()
			if txType != "" && txType != string(core.AllTypes) {
				t, err := core.ParseTxType(txType)
				if err != nil {
					return err
				}
				cats = core.CategoriesOfType(cats, t)
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No categories found. Use 'fintrackctl categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", headerStyle.Render("ID"), headerStyle.Render("Name"), headerStyle.Render("Type"))
			for _, c := range cats {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, amountStyle(c.Type).Render(c.Type.Label()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&txType, "type", "all", "only list categories of this type")
	return cmd
}

func addCategoryCmd(tracker func() *services.Tracker) *cobra.Command {
	var txType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTxType(txType)
			if err != nil {
				return err
			}
			c, err := tracker().AddCategory(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d: %s (%s)\n",
				successStyle.Render("Added category"), c.ID, c.Name, c.Type.Label())
			return nil
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Expense), "category type (income or expense)")
	return cmd
}
