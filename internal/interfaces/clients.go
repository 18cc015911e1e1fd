// Package interfaces defines service contracts for valuescope
package interfaces

import (
	"context"

	"github.com/bobmcallan/valuescope/internal/models"
)

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	// GetFundamentals retrieves fundamental data, including the latest yearly statements
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)

	// GetRealTimeQuote retrieves the live price snapshot for a ticker
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
}
