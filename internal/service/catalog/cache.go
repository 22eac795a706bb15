package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

// LoadFailedMessage is the user-visible text for a failed catalog load.
const LoadFailedMessage = "Failed to load stock data"

// ErrLoadFailed indicates the stock listing could not be fetched.
var ErrLoadFailed = errors.New("failed to load stock data")

// Fetcher reads the stock listing from the inventory server.
type Fetcher interface {
	ListStocks(ctx context.Context) ([]models.StockItem, error)
}

// Cache holds the snapshot of stock items fetched for one session. The
// snapshot is only ever replaced by Load or adjusted by ApplyIssued.
type Cache struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu      sync.RWMutex
	items   []models.StockItem
	loadErr error
}

// New builds an empty cache.
func New(fetcher Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{fetcher: fetcher, logger: logger}
}

// Load performs a single fetch and replaces the snapshot. On failure the
// snapshot is emptied and the error is kept until the next successful load.
func (c *Cache) Load(ctx context.Context) error {
	items, err := c.fetcher.ListStocks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.items = nil
		c.loadErr = fmt.Errorf("%w: %w", ErrLoadFailed, err)
		c.logger.Warn("stock catalog load failed", zap.Error(err))
		return c.loadErr
	}

	c.items = append([]models.StockItem(nil), items...)
	c.loadErr = nil
	c.logger.Debug("stock catalog loaded", zap.Int("items", len(items)))
	return nil
}

// Lookup returns the first item whose name matches exactly.
func (c *Cache) Lookup(stockName string) (models.StockItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(stockName); i >= 0 {
		return c.items[i], true
	}
	return models.StockItem{}, false
}

// Snapshot returns a copy of the current items in server order.
func (c *Cache) Snapshot() []models.StockItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.StockItem(nil), c.items...)
}

// Err returns the last load error, if any.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// ApplyIssued decrements the first matching item after a successful issuance,
// keeping later validations in the same session close to the server state.
// Quantities never go below zero.
func (c *Cache) ApplyIssued(stockName string, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(stockName)
	if i < 0 {
		return false
	}

	remaining := c.items[i].Quantity - quantity
	if remaining < 0 {
		remaining = 0
	}
	c.items[i].Quantity = remaining
	return true
}

func (c *Cache) indexOf(stockName string) int {
	for i := range c.items {
		if c.items[i].StockName == stockName {
			return i
		}
	}
	return -1
}
