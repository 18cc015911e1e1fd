package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/valuescope/internal/models"
)

// Chart kinds
const (
	ChartValuation     = "valuation"
	ChartDividends     = "dividends"
	ChartReturns       = "returns"
	ChartMargins       = "margins"
	ChartValueCreation = "value_creation"
	ChartLeverage      = "leverage"
	ChartLiquidity     = "liquidity"
)

// ErrNoChartData is returned when no row has a value for the chart's metrics.
var ErrNoChartData = errors.New("no data to chart")

var (
	colorBlue   = drawing.ColorFromHex("2563eb")
	colorOrange = drawing.ColorFromHex("f59e0b")
	colorPurple = drawing.ColorFromHex("8b5cf6")
	colorGreen  = drawing.ColorFromHex("16a34a")
	colorRed    = drawing.ColorFromHex("dc2626")
	colorGray   = drawing.ColorFromHex("9ca3af")
)

type metric struct {
	label   string
	percent bool
	color   drawing.Color
	value   func(models.Row) *float64
}

type chartSpec struct {
	title   string
	metrics []metric
}

var chartSpecs = map[string]chartSpec{
	ChartValuation: {
		title: "Valuation Ratios",
		metrics: []metric{
			{"P/E", false, colorBlue, func(r models.Row) *float64 { return r.Ratios.PE }},
			{"P/B", false, colorOrange, func(r models.Row) *float64 { return r.Ratios.PB }},
			{"P/FCF", false, colorPurple, func(r models.Row) *float64 { return r.Ratios.PFCF }},
		},
	},
	ChartDividends: {
		title: "Dividend Yield (%)",
		metrics: []metric{
			{"Yield", true, colorGreen, func(r models.Row) *float64 { return r.Ratios.DividendYield }},
		},
	},
	ChartReturns: {
		title: "ROE vs ROA (%)",
		metrics: []metric{
			{"ROE", true, colorBlue, func(r models.Row) *float64 { return r.Ratios.ROE }},
			{"ROA", true, colorOrange, func(r models.Row) *float64 { return r.Ratios.ROA }},
		},
	},
	ChartMargins: {
		title: "Operating vs Net Margin (%)",
		metrics: []metric{
			{"Oper", true, colorBlue, func(r models.Row) *float64 { return r.Ratios.OperatingMargin }},
			{"Net", true, colorOrange, func(r models.Row) *float64 { return r.Ratios.ProfitMargin }},
		},
	},
	ChartLeverage: {
		title: "Debt to Equity",
		metrics: []metric{
			{"D/E", false, colorBlue, func(r models.Row) *float64 { return r.Ratios.DebtToEquity }},
			{"LtD/E", false, colorOrange, func(r models.Row) *float64 { return r.Ratios.LongTermDebtToEquity }},
		},
	},
	ChartLiquidity: {
		title: "Liquidity Ratios",
		metrics: []metric{
			{"Current", false, colorBlue, func(r models.Row) *float64 { return r.Ratios.CurrentRatio }},
			{"Quick", false, colorOrange, func(r models.Row) *float64 { return r.Ratios.QuickRatio }},
		},
	},
}

// ChartKinds returns every supported chart kind, sorted.
func ChartKinds() []string {
	kinds := []string{ChartValueCreation}
	for k := range chartSpecs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// RenderChart renders a PNG bar chart of the given kind. Each bar is one
// metric of one ticker; absent values are left out.
func RenderChart(table *models.Table, kind string) ([]byte, error) {
	if table == nil {
		return nil, ErrNoChartData
	}

	var (
		title string
		bars  []chart.Value
	)
	if kind == ChartValueCreation {
		title = "Value Creation: ROIC vs WACC (%)"
		bars = valueCreationBars(table.Rows)
	} else {
		spec, ok := chartSpecs[kind]
		if !ok {
			return nil, fmt.Errorf("unknown chart kind %q", kind)
		}
		title = spec.title
		bars = metricBars(table.Rows, spec.metrics)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s chart: %w", kind, ErrNoChartData)
	}

	return renderBars(title, bars)
}

func metricBars(rows []models.Row, metrics []metric) []chart.Value {
	var bars []chart.Value
	for _, row := range rows {
		for _, m := range metrics {
			v := m.value(row)
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				continue
			}
			val := *v
			if m.percent {
				val *= 100
			}
			bars = append(bars, bar(fmt.Sprintf("%s %s", row.Ticker, m.label), val, m.color))
		}
	}
	return bars
}

// valueCreationBars pairs ROIC (green when above WACC, red otherwise) with
// WACC (gray) for every ticker whose WACC is available.
func valueCreationBars(rows []models.Row) []chart.Value {
	var bars []chart.Value
	for _, row := range rows {
		if row.WACC == nil {
			continue
		}
		roicColor := colorRed
		if row.WACC.CreatesValue() {
			roicColor = colorGreen
		}
		bars = append(bars,
			bar(fmt.Sprintf("%s ROIC", row.Ticker), row.WACC.ROIC*100, roicColor),
			bar(fmt.Sprintf("%s WACC", row.Ticker), row.WACC.WACC*100, colorGray),
		)
	}
	return bars
}

func bar(label string, value float64, color drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: value,
		Style: chart.Style{
			FillColor:   color,
			StrokeColor: color,
			StrokeWidth: 1,
		},
	}
}

func renderBars(title string, bars []chart.Value) ([]byte, error) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	hi += pad

	const barWidth, barSpacing = 28, 12
	width := max(600, len(bars)*(barWidth+barSpacing)+120)

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: 480,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
			FontSize:            8,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
