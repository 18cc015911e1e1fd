// Package report turns analysis results into tables, documents and charts.
package report

import (
	"errors"
	"time"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/models"
)

// SummaryColumns are the columns shown in the summary table, in order.
var SummaryColumns = []string{
	models.ColTicker, models.ColName, models.ColSector, models.ColPrice,
	models.ColPE, models.ColPB, models.ColPFCF, models.ColDividendYield,
	models.ColROE, models.ColDebtToEquity, models.ColProfitMargin,
	models.ColWACC, models.ColROIC, models.ColValueCreation,
}

// Aggregate builds the presentation table from a report. Failed tickers are
// listed in Skipped. If none succeeded it returns models.ErrEmptyResult
// together with a table that has no rows; only its Skipped list is
// meaningful then, for reporting why each ticker failed.
func Aggregate(report *models.Report) (*models.Table, error) {
	if report == nil {
		return nil, models.ErrEmptyResult
	}

	table := &models.Table{
		RunID:       report.RunID,
		GeneratedAt: time.Now(),
		Columns:     append([]string(nil), SummaryColumns...),
	}

	for _, res := range report.Results {
		switch r := res.(type) {
		case *models.TickerSuccess:
			table.Rows = append(table.Rows, buildRow(r))
		case *models.TickerFailure:
			table.Skipped = append(table.Skipped, models.SkippedTicker{
				Ticker: r.Ticker,
				Reason: failureReason(r),
			})
		}
	}

	if len(table.Rows) == 0 {
		return table, models.ErrEmptyResult
	}
	return table, nil
}

func failureReason(f *models.TickerFailure) string {
	var srcErr *models.SourceError
	if errors.As(f.Err, &srcErr) && srcErr.Cause != nil {
		return srcErr.Cause.Error()
	}
	return f.Error()
}

func buildRow(s *models.TickerSuccess) models.Row {
	profile := s.Profile.WithDefaults(s.Ticker)
	r := s.Ratios

	row := models.Row{
		Ticker:     s.Ticker,
		Profile:    profile,
		Price:      s.Price,
		Ratios:     r,
		WACC:       s.WACC,
		ValueLabel: models.LabelInsufficientData,
	}

	var wacc, roic, spread *float64
	if s.WACC != nil {
		creates := s.WACC.CreatesValue()
		row.CreatesValue = &creates
		if creates {
			row.ValueLabel = models.LabelCreatingValue
		} else {
			row.ValueLabel = models.LabelDestroyingValue
		}
		wacc = models.Float64(s.WACC.WACC)
		roic = models.Float64(s.WACC.ROIC)
		spread = models.Float64(s.WACC.Spread)
	}

	row.Display = map[string]string{
		models.ColTicker:          s.Ticker.String(),
		models.ColName:            profile.Name,
		models.ColSector:          profile.Sector,
		models.ColCountry:         profile.Country,
		models.ColIndustry:        profile.Industry,
		models.ColPrice:           common.FormatMoney(s.Price),
		models.ColPE:              common.FormatRatio(r.PE),
		models.ColPB:              common.FormatRatio(r.PB),
		models.ColPFCF:            common.FormatRatio(r.PFCF),
		models.ColDividendRate:    common.FormatRatio(r.DividendRate),
		models.ColDividendYield:   common.FormatPct(r.DividendYield),
		models.ColPayoutRatio:     common.FormatRatio(r.PayoutRatio),
		models.ColROA:             common.FormatPct(r.ROA),
		models.ColROE:             common.FormatPct(r.ROE),
		models.ColCurrentRatio:    common.FormatRatio(r.CurrentRatio),
		models.ColQuickRatio:      common.FormatRatio(r.QuickRatio),
		models.ColLtDebtToEquity:  common.FormatRatio(r.LongTermDebtToEquity),
		models.ColDebtToEquity:    common.FormatRatio(r.DebtToEquity),
		models.ColOperatingMargin: common.FormatPct(r.OperatingMargin),
		models.ColProfitMargin:    common.FormatPct(r.ProfitMargin),
		models.ColWACC:            common.FormatPct(wacc),
		models.ColROIC:            common.FormatPct(roic),
		models.ColSpread:          models.NotAvailable,
		models.ColValueCreation:   row.ValueLabel,
	}
	if spread != nil {
		row.Display[models.ColSpread] = common.FormatSignedPct(*spread)
	}

	return row
}
