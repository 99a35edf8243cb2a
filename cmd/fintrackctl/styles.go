package main

import (
	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/chart"
	"fintrack/internal/core"
)

var (
	incomeColor  = lipgloss.Color(chart.ColorIncome)
	expenseColor = lipgloss.Color(chart.ColorExpense)
	balanceColor = lipgloss.Color(chart.ColorBalance)
	subtleColor  = lipgloss.Color("#666666")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(balanceColor)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	incomeStyle  = lipgloss.NewStyle().Foreground(incomeColor)
	expenseStyle = lipgloss.NewStyle().Foreground(expenseColor)
	balanceStyle = lipgloss.NewStyle().Bold(true).Foreground(balanceColor)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	successStyle = lipgloss.NewStyle().Foreground(incomeColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(expenseColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1)
)

// amountStyle colors an amount by transaction type.
func amountStyle(t core.TxType) lipgloss.Style {
	if t == core.Expense {
		return expenseStyle
	}
	return incomeStyle
}
