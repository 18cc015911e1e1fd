package valuation

import (
	"github.com/bobmcallan/valuescope/internal/models"
)

// ExtractRatios reads the ratio set from the summary block and derives
// price-to-free-cash-flow. Each ratio is nil when its inputs are absent.
func ExtractRatios(raw *models.RawFinancials) models.RatioSet {
	if raw == nil {
		return models.RatioSet{}
	}

	s := raw.Summary
	return models.RatioSet{
		PE:                   s.Ptr(models.SummaryTrailingPE),
		PB:                   s.Ptr(models.SummaryPriceToBook),
		PFCF:                 priceToFreeCashFlow(raw),
		DividendRate:         s.Ptr(models.SummaryDividendRate),
		DividendYield:        s.Ptr(models.SummaryDividendYield),
		PayoutRatio:          s.Ptr(models.SummaryPayoutRatio),
		ROA:                  s.Ptr(models.SummaryReturnOnAssets),
		ROE:                  s.Ptr(models.SummaryReturnOnEquity),
		CurrentRatio:         s.Ptr(models.SummaryCurrentRatio),
		QuickRatio:           s.Ptr(models.SummaryQuickRatio),
		LongTermDebtToEquity: s.Ptr(models.SummaryLongTermDebtToEquity),
		DebtToEquity:         s.Ptr(models.SummaryDebtToEquity),
		OperatingMargin:      s.Ptr(models.SummaryOperatingMargins),
		ProfitMargin:         s.Ptr(models.SummaryProfitMargins),
	}
}

// ExtractRatios is the method form used by the batch orchestrator.
func (c *Calculator) ExtractRatios(raw *models.RawFinancials) models.RatioSet {
	return ExtractRatios(raw)
}

// priceToFreeCashFlow is price / (FCF / shares). Absent when any input is
// missing or FCF or shares is zero.
func priceToFreeCashFlow(raw *models.RawFinancials) *float64 {
	price, okPrice := raw.Summary.Get(models.SummaryCurrentPrice)
	shares, okShares := raw.Summary.Get(models.SummarySharesOutstanding)
	fcf, okFCF := raw.CashFlow.Get(models.CashFlowFreeCashFlow)
	if !okPrice || !okShares || !okFCF || shares == 0 || fcf == 0 {
		return nil
	}
	v := finite(price / (fcf / shares))
	return &v
}

// Price returns the current price, or nil when the provider did not report one.
func Price(raw *models.RawFinancials) *float64 {
	if raw == nil {
		return nil
	}
	return raw.Summary.Ptr(models.SummaryCurrentPrice)
}
