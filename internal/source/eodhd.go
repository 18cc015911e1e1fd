// Package source adapts external market-data providers into RawFinancials.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
)

// EODHD statement field names mapped to canonical line items. Earlier keys
// take precedence.
var (
	balanceSheetFields = map[string][]string{
		models.BalanceTotalDebt:         {"shortLongTermDebtTotal", "totalDebt"},
		models.BalanceCashAndEquivalent: {"cashAndEquivalents", "cash"},
		models.BalanceCommonEquity:      {"commonStockTotalEquity", "totalStockholderEquity"},
	}
	incomeStatementFields = map[string][]string{
		models.IncomeInterestExpense:  {"interestExpense"},
		models.IncomeEBT:              {"incomeBeforeTax"},
		models.IncomeIncomeTaxExpense: {"incomeTaxExpense"},
		models.IncomeEBIT:             {"ebit"},
	}
	cashFlowFields = map[string][]string{
		models.CashFlowFreeCashFlow: {"freeCashFlow"},
	}
)

// EODHDSource fetches fundamentals and a live quote from EODHD.
type EODHDSource struct {
	client          interfaces.EODHDClient
	defaultExchange string
	logger          *common.Logger
}

// EODHDOption configures an EODHDSource
type EODHDOption func(*EODHDSource)

// WithDefaultExchange sets the exchange suffix appended to bare tickers ("US").
func WithDefaultExchange(exchange string) EODHDOption {
	return func(s *EODHDSource) {
		s.defaultExchange = strings.ToUpper(strings.TrimSpace(exchange))
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) EODHDOption {
	return func(s *EODHDSource) {
		s.logger = logger
	}
}

// NewEODHDSource creates a source backed by an EODHD client.
func NewEODHDSource(client interfaces.EODHDClient, opts ...EODHDOption) *EODHDSource {
	s := &EODHDSource{
		client:          client,
		defaultExchange: "US",
		logger:          common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// providerCode returns the EODHD symbol for a ticker, e.g. "AAPL" -> "AAPL.US".
func (s *EODHDSource) providerCode(ticker models.Ticker) string {
	if ticker.Exchange() != "" || s.defaultExchange == "" {
		return ticker.String()
	}
	return ticker.String() + "." + s.defaultExchange
}

// Fetch implements interfaces.FinancialSource.
func (s *EODHDSource) Fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error) {
	if ticker == "" {
		return nil, models.NewSourceError(ticker, models.ErrEmptyTicker)
	}
	if s.client == nil {
		return nil, models.NewSourceError(ticker, errors.New("EODHD client not configured"))
	}

	code := s.providerCode(ticker)

	fund, err := s.client.GetFundamentals(ctx, code)
	if err != nil {
		return nil, models.NewSourceError(ticker, fmt.Errorf("fundamentals %s: %w", code, err))
	}

	raw := fromFundamentals(ticker, fund)

	quote, err := s.client.GetRealTimeQuote(ctx, code)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Str("ticker", ticker.String()).Msg("Real-time quote unavailable, price left empty")
	case quote.Close > 0:
		raw.Summary[models.SummaryCurrentPrice] = quote.Close
	default:
		s.logger.Warn().Str("ticker", ticker.String()).Msg("Real-time quote has no price")
	}

	return raw, nil
}

// fromFundamentals maps provider fundamentals onto canonical line items.
func fromFundamentals(ticker models.Ticker, f *models.Fundamentals) *models.RawFinancials {
	raw := &models.RawFinancials{
		Ticker: ticker,
		Profile: models.Profile{
			Name:     f.Name,
			Sector:   f.Sector,
			Country:  f.Country,
			Industry: f.Industry,
		},
		Summary:         models.LineItems{},
		BalanceSheet:    mapStatement(f.BalanceSheet, balanceSheetFields),
		IncomeStatement: mapStatement(f.IncomeStatement, incomeStatementFields),
		CashFlow:        mapStatement(f.CashFlow, cashFlowFields),
	}

	direct := map[string]*float64{
		models.SummaryTrailingPE:        f.PE,
		models.SummaryPriceToBook:       f.PB,
		models.SummaryDividendRate:      f.DividendShare,
		models.SummaryDividendYield:     f.DividendYield,
		models.SummaryPayoutRatio:       f.PayoutRatio,
		models.SummaryReturnOnAssets:    f.ReturnOnAssets,
		models.SummaryReturnOnEquity:    f.ReturnOnEquity,
		models.SummaryOperatingMargins:  f.OperatingMargin,
		models.SummaryProfitMargins:     f.ProfitMargin,
		models.SummaryBeta:              f.Beta,
		models.SummaryMarketCap:         f.MarketCap,
		models.SummarySharesOutstanding: f.SharesOutstanding,
	}
	for name, v := range direct {
		if v != nil {
			raw.Summary[name] = *v
		}
	}

	for name, v := range balanceSheetRatios(f.BalanceSheet) {
		raw.Summary[name] = v
	}

	return raw
}

func mapStatement(stmt *models.FinancialStatement, fields map[string][]string) models.LineItems {
	items := models.LineItems{}
	if stmt == nil {
		return items
	}
	for name, keys := range fields {
		for _, key := range keys {
			if v, ok := stmt.Get(key); ok {
				items[name] = v
				break
			}
		}
	}
	return items
}

// balanceSheetRatios derives the liquidity and leverage ratios EODHD does
// not report directly. A ratio is omitted when any input is missing or its
// denominator is zero.
func balanceSheetRatios(bs *models.FinancialStatement) map[string]float64 {
	out := map[string]float64{}
	if bs == nil {
		return out
	}

	ratio := func(name string, num, den float64, ok bool) {
		if ok && den != 0 {
			out[name] = num / den
		}
	}

	currentAssets, okCA := bs.Get("totalCurrentAssets")
	currentLiab, okCL := bs.Get("totalCurrentLiabilities")
	ratio(models.SummaryCurrentRatio, currentAssets, currentLiab, okCA && okCL)

	cash, okCash := firstItem(bs, "cashAndShortTermInvestments", "cashAndEquivalents", "cash")
	receivables, okRec := bs.Get("netReceivables")
	if !okRec {
		receivables = 0
	}
	ratio(models.SummaryQuickRatio, cash+receivables, currentLiab, okCash && okCL)

	equity, okEq := bs.Get("totalStockholderEquity")
	debt, okDebt := firstItem(bs, "shortLongTermDebtTotal", "totalDebt")
	ratio(models.SummaryDebtToEquity, debt, equity, okDebt && okEq)

	ltDebt, okLt := bs.Get("longTermDebt")
	ratio(models.SummaryLongTermDebtToEquity, ltDebt, equity, okLt && okEq)

	return out
}

func firstItem(stmt *models.FinancialStatement, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := stmt.Get(k); ok {
			return v, true
		}
	}
	return 0, false
}

var _ interfaces.FinancialSource = (*EODHDSource)(nil)
