// Package marketdata provides the market-data collaborator contract consumed
// by the backtest orchestrator, plus provider implementations.
package marketdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// Interval is the bar interval of fetched data.
type Interval string

const (
	IntervalMinute Interval = "1m"
	IntervalHour   Interval = "1h"
	IntervalDay    Interval = "1d"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderStatic  ProviderType = "static"
)

// Provider fetches historical bars. An empty result is a valid outcome (the
// orchestrator reports it as no_data), never an error by itself.
type Provider interface {
	// FetchBars returns the bars for symbol in [start, end), ascending in
	// time.
	FetchBars(ctx context.Context, symbol string, start, end time.Time, interval Interval) ([]types.MarketData, error)
}

// NewProvider creates a market data provider based on the provider type.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProvider,
				"polygon provider requires API key string config")
		}

		return NewPolygonProvider(apiKey)
	case ProviderStatic:
		bars, ok := config.([]types.MarketData)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProvider,
				"static provider requires a bar slice config")
		}

		return NewStaticProvider(bars), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider,
			"unsupported market data provider: %s", providerType)
	}
}
