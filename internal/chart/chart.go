// Package chart builds the income/expense pie shown under the ledger.
package chart

import (
	"fmt"
	"math"

	"fintrack/internal/core"
)

const (
	ColorIncome  = "#4CAF50"
	ColorExpense = "#F44336"
	ColorBalance = "#2196F3"
)

// Geometry of the rendered SVG.
const (
	ViewBox = 200
	Center  = ViewBox / 2
	Radius  = 90
)

// Slice is one wedge of the pie, or the balance legend entry.
type Slice struct {
	Label   string
	Value   core.Money
	Color   string
	Percent float64
	Tooltip string
	Path    string
	Full    bool
}

// Pie is the presentation model of the chart.
type Pie struct {
	Slices  []Slice
	Balance Slice
	Empty   bool
}

// NewPie splits the income and expense totals into wedges. When both are
// zero the pie is empty and only the legend is drawn.
func NewPie(t core.Totals) Pie {
	slices := []Slice{
		newSlice("Income", t.Income, ColorIncome),
		newSlice("Expenses", t.Expense, ColorExpense),
	}
	p := Pie{
		Slices:  slices,
		Balance: newSlice("Balance", t.Balance, ColorBalance),
	}

	total := t.Income.Cents + t.Expense.Cents
	if total <= 0 {
		p.Empty = true
		return p
	}

	start := 0.0
	for i := range p.Slices {
		s := &p.Slices[i]
		if s.Value.Cents <= 0 {
			continue
		}
		frac := float64(s.Value.Cents) / float64(total)
		s.Percent = math.Round(frac*1000) / 10
		if s.Value.Cents == total {
			s.Full = true
			s.Path = circlePath()
		} else {
			s.Path = wedgePath(start, start+frac)
		}
		start += frac
	}
	return p
}

func newSlice(label string, v core.Money, color string) Slice {
	return Slice{
		Label:   label,
		Value:   v,
		Color:   color,
		Tooltip: fmt.Sprintf("%s: $%s", label, v.Decimal()),
	}
}

// point returns the coordinates at fraction f of a full turn, starting at
// twelve o'clock and going clockwise.
func point(f float64) (float64, float64) {
	a := 2*math.Pi*f - math.Pi/2
	return Center + Radius*math.Cos(a), Center + Radius*math.Sin(a)
}

func wedgePath(from, to float64) string {
	x1, y1 := point(from)
	x2, y2 := point(to)
	large := 0
	if to-from > 0.5 {
		large = 1
	}
	return fmt.Sprintf("M %d %d L %.2f %.2f A %d %d 0 %d 1 %.2f %.2f Z",
		Center, Center, x1, y1, Radius, Radius, large, x2, y2)
}

// circlePath draws a full disc as two half arcs; a single arc cannot close
// on its own starting point.
func circlePath() string {
	return fmt.Sprintf("M %d %d A %d %d 0 1 1 %d %d A %d %d 0 1 1 %d %d Z",
		Center, Center-Radius, Radius, Radius, Center, Center+Radius,
		Radius, Radius, Center, Center-Radius)
}
