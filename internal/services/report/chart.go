package report

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// renderSummaryChart renders the month's income vs expense bars as a PNG.
func renderSummaryChart(totals Totals) ([]byte, error) {
	income, _ := totals.Income.Float64()
	expense, _ := totals.Expense.Float64()

	bc := chart.BarChart{
		Title:    "Resumen del mes",
		Width:    480,
		Height:   300,
		BarWidth: 100,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: []chart.Value{
			{
				Value: income,
				Label: "Ingresos",
				Style: chart.Style{
					FillColor:   drawing.ColorFromHex("10b981"),
					StrokeColor: drawing.ColorFromHex("10b981"),
				},
			},
			{
				Value: expense,
				Label: "Gastos",
				Style: chart.Style{
					FillColor:   drawing.ColorFromHex("ef4444"),
					StrokeColor: drawing.ColorFromHex("ef4444"),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
