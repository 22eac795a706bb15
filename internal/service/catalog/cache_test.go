package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/catalog"
)

type fakeFetcher struct {
	items []models.StockItem
	err   error
	calls int
}

func (f *fakeFetcher) ListStocks(context.Context) ([]models.StockItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestLoad_ReplacesSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}, {StockName: "Nut", Quantity: 3}}}
	cache := catalog.New(fetcher, nil)

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, fetcher.items, cache.Snapshot())
	assert.NoError(t, cache.Err())

	fetcher.items = []models.StockItem{{StockName: "Washer", Quantity: 1}}
	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, []models.StockItem{{StockName: "Washer", Quantity: 1}}, cache.Snapshot())

	_, ok := cache.Lookup("Bolt")
	assert.False(t, ok)
}

func TestLoad_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}}}
	cache := catalog.New(fetcher, nil)

	require.NoError(t, cache.Load(context.Background()))
	first := cache.Snapshot()
	require.NoError(t, cache.Load(context.Background()))

	assert.Equal(t, first, cache.Snapshot())
	assert.Equal(t, 2, fetcher.calls)
}

func TestLoad_FailureEmptiesSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}}}
	cache := catalog.New(fetcher, nil)
	require.NoError(t, cache.Load(context.Background()))

	cause := errors.New("connection refused")
	fetcher.err = cause
	err := cache.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrLoadFailed)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, cache.Snapshot())
	assert.ErrorIs(t, cache.Err(), catalog.ErrLoadFailed)
	assert.Equal(t, 2, fetcher.calls, "no automatic retry")
}

func TestLookup_FirstMatchWins(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{
		{StockName: "Bolt", Quantity: 10, Category: "first"},
		{StockName: "Bolt", Quantity: 99, Category: "second"},
	}}
	cache := catalog.New(fetcher, nil)
	require.NoError(t, cache.Load(context.Background()))

	item, ok := cache.Lookup("Bolt")
	require.True(t, ok)
	assert.Equal(t, "first", item.Category)
	assert.Len(t, cache.Snapshot(), 2)

	_, ok = cache.Lookup("bolt")
	assert.False(t, ok, "lookup is exact")
}

func TestSnapshot_IsACopy(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}}}
	cache := catalog.New(fetcher, nil)
	require.NoError(t, cache.Load(context.Background()))

	snap := cache.Snapshot()
	snap[0].Quantity = 0

	item, _ := cache.Lookup("Bolt")
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 10, fetcher.items[0].Quantity)
}

func TestApplyIssued(t *testing.T) {
	fetcher := &fakeFetcher{items: []models.StockItem{{StockName: "Bolt", Quantity: 10}}}
	cache := catalog.New(fetcher, nil)
	require.NoError(t, cache.Load(context.Background()))

	assert.True(t, cache.ApplyIssued("Bolt", 4))
	item, _ := cache.Lookup("Bolt")
	assert.Equal(t, 6, item.Quantity)

	assert.True(t, cache.ApplyIssued("Bolt", 50))
	item, _ = cache.Lookup("Bolt")
	assert.Equal(t, 0, item.Quantity)

	assert.False(t, cache.ApplyIssued("Nut", 1))
	assert.Equal(t, 10, fetcher.items[0].Quantity, "server data is untouched")
}
