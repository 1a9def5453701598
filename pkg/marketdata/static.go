package marketdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/plantrade/internal/types"
)

// StaticProvider serves bars from memory. It backs offline runs and tests.
type StaticProvider struct {
	bars []types.MarketData
}

// NewStaticProvider creates a provider over a fixed, ascending bar sequence.
func NewStaticProvider(bars []types.MarketData) *StaticProvider {
	return &StaticProvider{bars: bars}
}

// FetchBars implements the Provider interface. Interval is ignored; the
// stored bars are returned at their native resolution.
func (s *StaticProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time, interval Interval) ([]types.MarketData, error) {
	var out []types.MarketData

	for _, bar := range s.bars {
		if bar.Symbol != "" && symbol != "" && bar.Symbol != symbol {
			continue
		}

		if bar.Time.Before(start) || !bar.Time.Before(end) {
			continue
		}

		out = append(out, bar)
	}

	return out, nil
}
