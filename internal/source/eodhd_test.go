package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescope/internal/models"
	tcommon "github.com/bobmcallan/valuescope/test/common"
)

func sampleFundamentals() *models.Fundamentals {
	return &models.Fundamentals{
		Ticker:            "AAPL.US",
		Name:              "Apple Inc",
		Sector:            "Technology",
		Industry:          "Consumer Electronics",
		Country:           "USA",
		MarketCap:         models.Float64(3e12),
		PE:                models.Float64(29.5),
		PB:                models.Float64(45.2),
		DividendYield:     models.Float64(0.0055),
		Beta:              models.Float64(1.24),
		SharesOutstanding: models.Float64(15.5e9),
		BalanceSheet: &models.FinancialStatement{
			Date: "2023-09-30",
			Items: map[string]float64{
				"shortLongTermDebtTotal":  111e9,
				"cashAndEquivalents":      30e9,
				"totalStockholderEquity":  62e9,
				"totalCurrentAssets":      143e9,
				"totalCurrentLiabilities": 145e9,
				"netReceivables":          60e9,
				"longTermDebt":            95e9,
			},
		},
		IncomeStatement: &models.FinancialStatement{
			Date: "2023-09-30",
			Items: map[string]float64{
				"interestExpense":  3.9e9,
				"incomeBeforeTax":  113.7e9,
				"incomeTaxExpense": 16.7e9,
				"ebit":             114.3e9,
			},
		},
		CashFlow: &models.FinancialStatement{
			Date:  "2023-09-30",
			Items: map[string]float64{"freeCashFlow": 99.6e9},
		},
	}
}

func TestEODHDSource_Fetch(t *testing.T) {
	client := tcommon.NewMockEODHDClient()
	client.Fundamentals["AAPL.US"] = sampleFundamentals()
	client.Quotes["AAPL.US"] = &models.RealTimeQuote{Code: "AAPL.US", Close: 189.5}

	src := NewEODHDSource(client)
	raw, err := src.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, models.Ticker("AAPL"), raw.Ticker)
	assert.Equal(t, "Apple Inc", raw.Profile.Name)
	assert.Equal(t, "USA", raw.Profile.Country)

	price, ok := raw.Summary.Get(models.SummaryCurrentPrice)
	assert.True(t, ok)
	assert.Equal(t, 189.5, price)
	assert.Equal(t, 3e12, raw.Summary.ValueOr(models.SummaryMarketCap, 0))
	assert.Equal(t, 1.24, raw.Summary.ValueOr(models.SummaryBeta, 0))
	_, ok = raw.Summary.Get(models.SummaryPayoutRatio)
	assert.False(t, ok)

	assert.Equal(t, 111e9, raw.BalanceSheet.ValueOr(models.BalanceTotalDebt, 0))
	assert.Equal(t, 30e9, raw.BalanceSheet.ValueOr(models.BalanceCashAndEquivalent, 0))
	assert.Equal(t, 62e9, raw.BalanceSheet.ValueOr(models.BalanceCommonEquity, 0))
	assert.Equal(t, 113.7e9, raw.IncomeStatement.ValueOr(models.IncomeEBT, 0))
	assert.Equal(t, 114.3e9, raw.IncomeStatement.ValueOr(models.IncomeEBIT, 0))
	assert.Equal(t, 99.6e9, raw.CashFlow.ValueOr(models.CashFlowFreeCashFlow, 0))

	// Derived balance sheet ratios
	assert.InDelta(t, 143.0/145.0, raw.Summary.ValueOr(models.SummaryCurrentRatio, 0), 1e-12)
	assert.InDelta(t, 90.0/145.0, raw.Summary.ValueOr(models.SummaryQuickRatio, 0), 1e-12)
	assert.InDelta(t, 111.0/62.0, raw.Summary.ValueOr(models.SummaryDebtToEquity, 0), 1e-12)
	assert.InDelta(t, 95.0/62.0, raw.Summary.ValueOr(models.SummaryLongTermDebtToEquity, 0), 1e-12)

	assert.Equal(t, 1, client.GetFundCalls)
	assert.Equal(t, 1, client.GetQuoteCalls)
}

func TestEODHDSource_ExchangeSuffix(t *testing.T) {
	client := tcommon.NewMockEODHDClient()
	client.Fundamentals["BHP.AU"] = &models.Fundamentals{Name: "BHP Group"}
	client.Quotes["BHP.AU"] = &models.RealTimeQuote{Close: 45}
	client.Fundamentals["CBA.AU"] = &models.Fundamentals{Name: "Commonwealth Bank"}

	// explicit suffix is kept
	src := NewEODHDSource(client)
	raw, err := src.Fetch(context.Background(), "BHP.AU")
	require.NoError(t, err)
	assert.Equal(t, "BHP Group", raw.Profile.Name)

	// bare ticker gets the configured default exchange
	src = NewEODHDSource(client, WithDefaultExchange(" au "))
	raw, err = src.Fetch(context.Background(), "CBA")
	require.NoError(t, err)
	assert.Equal(t, "Commonwealth Bank", raw.Profile.Name)
}

func TestEODHDSource_ShareClassGetsDefaultExchange(t *testing.T) {
	client := tcommon.NewMockEODHDClient()
	client.Fundamentals["BRK.B.US"] = &models.Fundamentals{Name: "Berkshire Hathaway"}

	raw, err := NewEODHDSource(client).Fetch(context.Background(), "BRK.B")
	require.NoError(t, err)
	assert.Equal(t, "Berkshire Hathaway", raw.Profile.Name)
}

func TestEODHDSource_QuoteFailureLeavesPriceAbsent(t *testing.T) {
	client := tcommon.NewMockEODHDClient()
	client.Fundamentals["MSFT.US"] = &models.Fundamentals{Name: "Microsoft"}
	client.QuoteErrors["MSFT.US"] = errors.New("quote endpoint down")

	raw, err := NewEODHDSource(client).Fetch(context.Background(), "MSFT")
	require.NoError(t, err)
	_, ok := raw.Summary.Get(models.SummaryCurrentPrice)
	assert.False(t, ok)
	assert.Empty(t, raw.BalanceSheet)
}

func TestEODHDSource_FundamentalsFailure(t *testing.T) {
	client := tcommon.NewMockEODHDClient()
	client.FundErrors["NOPE.US"] = errors.New("404 not found")

	_, err := NewEODHDSource(client).Fetch(context.Background(), "NOPE")
	require.Error(t, err)

	var srcErr *models.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, models.Ticker("NOPE"), srcErr.Ticker)
	assert.Contains(t, err.Error(), "404 not found")
	assert.Equal(t, 0, client.GetQuoteCalls)
}

func TestEODHDSource_NoClient(t *testing.T) {
	_, err := NewEODHDSource(nil).Fetch(context.Background(), "AAPL")
	var srcErr *models.SourceError
	assert.True(t, errors.As(err, &srcErr))
}

func TestBalanceSheetRatios_ZeroDenominators(t *testing.T) {
	ratios := balanceSheetRatios(&models.FinancialStatement{Items: map[string]float64{
		"totalCurrentAssets":      100,
		"totalCurrentLiabilities": 0,
		"totalStockholderEquity":  0,
		"totalDebt":               50,
	}})
	assert.Empty(t, ratios)
	assert.Empty(t, balanceSheetRatios(nil))
}

func TestMapStatement_PrefersFirstKey(t *testing.T) {
	items := mapStatement(&models.FinancialStatement{Items: map[string]float64{
		"commonStockTotalEquity": 10,
		"totalStockholderEquity": 20,
		"cash":                   5,
	}}, balanceSheetFields)

	assert.Equal(t, 10.0, items.ValueOr(models.BalanceCommonEquity, 0))
	assert.Equal(t, 5.0, items.ValueOr(models.BalanceCashAndEquivalent, 0))
	_, ok := items.Get(models.BalanceTotalDebt)
	assert.False(t, ok)
}
