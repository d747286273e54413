// Package monitor runs the periodic low-stock scan.
package monitor

import (
	"context"
	"time"

	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// LowStockMonitor periodically scans the stock ledger and logs a warning for
// every product whose quantity has fallen strictly below the threshold.
type LowStockMonitor struct {
	inventory service.InventoryService
	threshold int
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a low-stock monitor.
func New(inventory service.InventoryService, threshold int, interval time.Duration, logger zerolog.Logger) *LowStockMonitor {
	return &LowStockMonitor{
		inventory: inventory,
		threshold: threshold,
		interval:  interval,
		logger:    logger.With().Str("component", "low_stock_monitor").Logger(),
	}
}

// Run scans once immediately, then on every tick until ctx is cancelled.
func (m *LowStockMonitor) Run(ctx context.Context) {
	m.logger.Info().
		Int("threshold", m.threshold).
		Dur("interval", m.interval).
		Msg("low stock monitor started")

	m.Scan(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("low stock monitor stopped")
			return
		case <-ticker.C:
			m.Scan(ctx)
		}
	}
}

// Scan performs a single pass over the ledger.
func (m *LowStockMonitor) Scan(ctx context.Context) {
	products, err := m.inventory.ListLowStock(ctx, m.threshold)
	if err != nil {
		m.logger.Error().Err(err).Msg("low stock scan failed")
		return
	}

	for _, p := range products {
		m.logger.Warn().
			Str("product_id", p.ID).
			Str("name", p.Name).
			Int("stock", p.Stock).
			Int("threshold", m.threshold).
			Msg("product is low on stock")
	}

	m.logger.Debug().Int("low_stock_count", len(products)).Msg("low stock scan complete")
}
