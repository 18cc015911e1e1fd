// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
)

// optFloat64 handles JSON values that may be a number, a numeric string or
// null. Valid is false for null, empty strings and placeholders like "None".
type optFloat64 struct {
	Value float64
	Valid bool
}

func (f *optFloat64) UnmarshalJSON(data []byte) error {
	*f = optFloat64{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = optFloat64{Value: num, Valid: isFinite(num)}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" || s == "N/A" || s == "None" || s == "null" {
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(num) {
			return nil
		}
		*f = optFloat64{Value: num, Valid: true}
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ptr returns nil when the value was not reported.
func (f optFloat64) ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the EODHDClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit. Values below 1 keep the default.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond < 1 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetFundamentals retrieves fundamental data and the most recent yearly
// balance sheet, income statement and cash flow statement.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", url.PathEscape(ticker))

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.General.Code == "" && resp.General.Name == "" {
		return nil, fmt.Errorf("no fundamentals returned for %s", ticker)
	}

	country := resp.General.CountryName
	if country == "" {
		country = resp.General.CountryISO
	}

	fundamentals := &models.Fundamentals{
		Ticker:            ticker,
		Name:              resp.General.Name,
		Type:              resp.General.Type,
		Sector:            resp.General.Sector,
		Industry:          resp.General.Industry,
		Country:           country,
		CountryISO:        resp.General.CountryISO,
		Currency:          resp.General.CurrencyCode,
		MarketCap:         resp.Highlights.MarketCapitalization.ptr(),
		PE:                firstValid(resp.Highlights.PERatio, resp.Valuation.TrailingPE),
		PB:                resp.Valuation.PriceBookMRQ.ptr(),
		EPS:               resp.Highlights.EarningsShare.ptr(),
		DividendShare:     firstValid(resp.Highlights.DividendShare, resp.SplitsDividends.ForwardAnnualDividendRate),
		DividendYield:     firstValid(resp.Highlights.DividendYield, resp.SplitsDividends.ForwardAnnualDividendYield),
		PayoutRatio:       resp.SplitsDividends.PayoutRatio.ptr(),
		Beta:              resp.Technicals.Beta.ptr(),
		ProfitMargin:      resp.Highlights.ProfitMargin.ptr(),
		OperatingMargin:   resp.Highlights.OperatingMarginTTM.ptr(),
		ReturnOnAssets:    resp.Highlights.ReturnOnAssetsTTM.ptr(),
		ReturnOnEquity:    resp.Highlights.ReturnOnEquityTTM.ptr(),
		SharesOutstanding: resp.SharesStats.SharesOutstanding.ptr(),
		BalanceSheet:      resp.Financials.BalanceSheet.latestYearly(),
		IncomeStatement:   resp.Financials.IncomeStatement.latestYearly(),
		CashFlow:          resp.Financials.CashFlow.latestYearly(),
		LastUpdated:       time.Now(),
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Bool("balance_sheet", fundamentals.BalanceSheet != nil).
		Bool("income_statement", fundamentals.IncomeStatement != nil).
		Bool("cash_flow", fundamentals.CashFlow != nil).
		Msg("EODHD fundamentals parsed")

	return fundamentals, nil
}

func firstValid(values ...optFloat64) *float64 {
	for _, v := range values {
		if v.Valid {
			return v.ptr()
		}
	}
	return nil
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Type         string `json:"Type"` // "Common Stock", "ETF", etc.
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		CountryName  string `json:"CountryName"`
		CountryISO   string `json:"CountryISO"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization optFloat64 `json:"MarketCapitalization"`
		PERatio              optFloat64 `json:"PERatio"`
		EarningsShare        optFloat64 `json:"EarningsShare"`
		DividendShare        optFloat64 `json:"DividendShare"`
		DividendYield        optFloat64 `json:"DividendYield"`
		ProfitMargin         optFloat64 `json:"ProfitMargin"`
		OperatingMarginTTM   optFloat64 `json:"OperatingMarginTTM"`
		ReturnOnAssetsTTM    optFloat64 `json:"ReturnOnAssetsTTM"`
		ReturnOnEquityTTM    optFloat64 `json:"ReturnOnEquityTTM"`
	} `json:"Highlights"`
	Valuation struct {
		TrailingPE   optFloat64 `json:"TrailingPE"`
		PriceBookMRQ optFloat64 `json:"PriceBookMRQ"`
	} `json:"Valuation"`
	SharesStats struct {
		SharesOutstanding optFloat64 `json:"SharesOutstanding"`
	} `json:"SharesStats"`
	Technicals struct {
		Beta optFloat64 `json:"Beta"`
	} `json:"Technicals"`
	SplitsDividends struct {
		ForwardAnnualDividendRate  optFloat64 `json:"ForwardAnnualDividendRate"`
		ForwardAnnualDividendYield optFloat64 `json:"ForwardAnnualDividendYield"`
		PayoutRatio                optFloat64 `json:"PayoutRatio"`
	} `json:"SplitsDividends"`
	Financials struct {
		BalanceSheet    statementResponse `json:"Balance_Sheet"`
		IncomeStatement statementResponse `json:"Income_Statement"`
		CashFlow        statementResponse `json:"Cash_Flow"`
	} `json:"Financials"`
}

// statementResponse holds one EODHD statement keyed by period end date.
type statementResponse struct {
	Currency string                           `json:"currency_symbol"`
	Yearly   map[string]map[string]optFloat64 `json:"yearly"`
}

// latestYearly returns the most recent yearly period, or nil when none exist.
func (s statementResponse) latestYearly() *models.FinancialStatement {
	if len(s.Yearly) == 0 {
		return nil
	}

	dates := make([]string, 0, len(s.Yearly))
	for d := range s.Yearly {
		dates = append(dates, d)
	}
	// ISO dates sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	latest := dates[0]

	items := make(map[string]float64, len(s.Yearly[latest]))
	for k, v := range s.Yearly[latest] {
		if v.Valid {
			items[k] = v.Value
		}
	}

	return &models.FinancialStatement{
		Date:     latest,
		Currency: s.Currency,
		Items:    items,
	}
}

// GetRealTimeQuote retrieves the live price snapshot for a ticker
func (c *Client) GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error) {
	path := fmt.Sprintf("/real-time/%s", url.PathEscape(ticker))

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if !resp.Close.Valid {
		return nil, fmt.Errorf("no real-time price for %s", ticker)
	}

	return &models.RealTimeQuote{
		Code:          resp.Code,
		Open:          resp.Open.Value,
		High:          resp.High.Value,
		Low:           resp.Low.Value,
		Close:         resp.Close.Value,
		PreviousClose: resp.PreviousClose.Value,
		Change:        resp.Change.Value,
		ChangePct:     resp.ChangePct.Value,
		Volume:        int64(resp.Volume.Value),
		Timestamp:     time.Unix(int64(resp.Timestamp.Value), 0),
	}, nil
}

// realTimeResponse represents the API response for real-time quotes.
// EODHD reports "NA" for fields it does not have, which optFloat64 treats as absent.
type realTimeResponse struct {
	Code          string     `json:"code"`
	Timestamp     optFloat64 `json:"timestamp"`
	Open          optFloat64 `json:"open"`
	High          optFloat64 `json:"high"`
	Low           optFloat64 `json:"low"`
	Close         optFloat64 `json:"close"`
	PreviousClose optFloat64 `json:"previousClose"`
	Change        optFloat64 `json:"change"`
	ChangePct     optFloat64 `json:"change_p"`
	Volume        optFloat64 `json:"volume"`
}

// Ensure Client implements EODHDClient
var _ interfaces.EODHDClient = (*Client)(nil)
