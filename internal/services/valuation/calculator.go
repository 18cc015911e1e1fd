// Package valuation computes cost of capital, return on invested capital and
// financial ratios from raw provider data.
package valuation

import (
	"math"

	"github.com/bobmcallan/valuescope/internal/models"
)

// Default cost-of-capital parameters
const (
	DefaultRiskFreeRate    = 0.02
	DefaultMarketReturn    = 0.07
	DefaultFallbackTaxRate = 0.21
	defaultBeta            = 1.0
)

// Params are the cost-of-capital assumptions, as fractions.
type Params struct {
	RiskFreeRate    float64
	MarketReturn    float64
	FallbackTaxRate float64 // applied when pre-tax income is zero
}

// DefaultParams returns rf 2%, market return 7% and a 21% fallback tax rate.
func DefaultParams() Params {
	return Params{
		RiskFreeRate:    DefaultRiskFreeRate,
		MarketReturn:    DefaultMarketReturn,
		FallbackTaxRate: DefaultFallbackTaxRate,
	}
}

// EquityRiskPremium is the market return in excess of the risk-free rate.
func (p Params) EquityRiskPremium() float64 {
	return p.MarketReturn - p.RiskFreeRate
}

// Calculator derives WACC/ROIC and ratios. It holds no state beyond its
// parameters and is safe for concurrent use.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given parameters.
func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params}
}

// Params returns the calculator's parameters.
func (c *Calculator) Params() Params {
	return c.params
}

// CapitalStructure extracts the WACC/ROIC inputs. Beta defaults to 1 and
// every other missing item to 0.
func CapitalStructure(raw *models.RawFinancials) models.CapitalStructureInputs {
	return models.CapitalStructureInputs{
		MarketCap:        raw.Summary.ValueOr(models.SummaryMarketCap, 0),
		Beta:             raw.Summary.ValueOr(models.SummaryBeta, defaultBeta),
		TotalDebt:        raw.BalanceSheet.ValueOr(models.BalanceTotalDebt, 0),
		Cash:             raw.BalanceSheet.ValueOr(models.BalanceCashAndEquivalent, 0),
		CommonEquity:     raw.BalanceSheet.ValueOr(models.BalanceCommonEquity, 0),
		InterestExpense:  raw.IncomeStatement.ValueOr(models.IncomeInterestExpense, 0),
		EBT:              raw.IncomeStatement.ValueOr(models.IncomeEBT, 0),
		IncomeTaxExpense: raw.IncomeStatement.ValueOr(models.IncomeIncomeTaxExpense, 0),
		EBIT:             raw.IncomeStatement.ValueOr(models.IncomeEBIT, 0),
	}
}

// ComputeWaccRoic computes WACC, ROIC and their spread. It returns
// models.ErrComputationUnavailable when market cap plus total debt is zero.
func (c *Calculator) ComputeWaccRoic(raw *models.RawFinancials) (*models.WACCResult, error) {
	if raw == nil {
		return nil, models.ErrComputationUnavailable
	}
	return c.computeFromInputs(CapitalStructure(raw))
}

func (c *Calculator) computeFromInputs(in models.CapitalStructureInputs) (*models.WACCResult, error) {
	costOfEquity := c.params.RiskFreeRate + in.Beta*c.params.EquityRiskPremium()

	costOfDebt := 0.0
	if in.TotalDebt != 0 {
		costOfDebt = in.InterestExpense / in.TotalDebt
	}

	taxRate := c.params.FallbackTaxRate
	if in.EBT != 0 {
		taxRate = in.IncomeTaxExpense / in.EBT
	}

	capital := in.MarketCap + in.TotalDebt
	if capital == 0 {
		return nil, models.ErrComputationUnavailable
	}

	equityWeight := in.MarketCap / capital
	debtWeight := in.TotalDebt / capital
	wacc := equityWeight*costOfEquity + debtWeight*costOfDebt*(1-taxRate)

	nopat := in.EBIT * (1 - taxRate)
	investedCapital := in.CommonEquity + (in.TotalDebt - in.Cash)

	res := &models.WACCResult{
		CostOfEquity:    finite(costOfEquity),
		CostOfDebt:      finite(costOfDebt),
		TaxRate:         finite(taxRate),
		WACC:            finite(wacc),
		NOPAT:           finite(nopat),
		InvestedCapital: finite(investedCapital),
	}
	if investedCapital != 0 {
		res.ROIC = finite(nopat / investedCapital)
	} else {
		res.ROICUndefined = true
	}
	res.Spread = res.ROIC - res.WACC

	return res, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
