package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"webshop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustConsume(t *testing.T) {
	articles := newFakeArticleStore(&models.Article{ID: 23, Name: "Lamp", Quantity: 10})
	cache := newFakeCache()
	adjuster := NewStockAdjuster(articles, cache)

	updated, err := adjuster.Adjust(context.Background(), 23, -2)
	require.NoError(t, err)

	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, 8, articles.quantity(23))
	assert.Equal(t, 8, cache.stocks[23])
}

func TestAdjustRestore(t *testing.T) {
	articles := newFakeArticleStore(&models.Article{ID: 23, Quantity: 8})
	adjuster := NewStockAdjuster(articles, nil)

	updated, err := adjuster.Adjust(context.Background(), 23, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
}

func TestAdjustInsufficientStockWritesNothing(t *testing.T) {
	articles := newFakeArticleStore(&models.Article{ID: 23, Quantity: 1})
	adjuster := NewStockAdjuster(articles, nil)

	_, err := adjuster.Adjust(context.Background(), 23, -2)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(23), insufficient.ArticleID)
	assert.Equal(t, 2, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)
	assert.Equal(t, 1, insufficient.Shortfall())

	_, puts := articles.counts()
	assert.Zero(t, puts)
	assert.Equal(t, 1, articles.quantity(23))
}

func TestAdjustUnknownArticle(t *testing.T) {
	adjuster := NewStockAdjuster(newFakeArticleStore(), nil)

	_, err := adjuster.Adjust(context.Background(), 99, -1)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestAdjustStoreFailure(t *testing.T) {
	articles := newFakeArticleStore(&models.Article{ID: 23, Quantity: 10})
	articles.getErr = errors.New("connection refused")
	adjuster := NewStockAdjuster(articles, nil)

	_, err := adjuster.Adjust(context.Background(), 23, -1)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

// Two concurrent adjustments to the same article must never both read the
// same pre-adjustment quantity: with 5 units on hand and 7 concurrent
// single-unit consumers, exactly 5 succeed and stock ends at 0.
func TestAdjustConcurrentSameArticle(t *testing.T) {
	articles := newFakeArticleStore(&models.Article{ID: 7, Quantity: 5})
	adjuster := NewStockAdjuster(articles, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0

	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := adjuster.Adjust(context.Background(), 7, -1)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var insufficient *InsufficientStockError
			assert.ErrorAs(t, err, &insufficient)
			failed++
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 0, articles.quantity(7))
}
