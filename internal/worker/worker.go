package worker

import (
	"context"
	"fmt"
	"log"

	"webshop-service/internal/broker"
	"webshop-service/internal/models"
	"webshop-service/internal/redisclient"
	"webshop-service/internal/store"
)

// StockCacheWorker keeps the redis stock cache in step with the article
// store by consuming order status-changed events and re-reading the
// articles each event touched.
type StockCacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	redis        *redisclient.Client
}

// NewStockCacheWorker creates a new stock cache worker
func NewStockCacheWorker(consumer *broker.Consumer, store *store.Store, redis *redisclient.Client) *StockCacheWorker {
	w := &StockCacheWorker{
		consumer: consumer,
		store:    store,
		redis:    redis,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockCacheWorker) Start(ctx context.Context) error {
	log.Println("Starting stock cache worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockCacheWorker) Stop() error {
	log.Println("Stopping stock cache worker...")
	return w.consumer.Close()
}

// handleStatusChanged refreshes cached quantities for the articles a
// transition adjusted
func (w *StockCacheWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	for _, delta := range event.Deltas {
		article, err := w.store.GetArticle(ctx, delta.ArticleID)
		if err != nil {
			log.Printf("Failed to load article %d for cache refresh: %v", delta.ArticleID, err)
			continue
		}

		if err := w.redis.SetStock(ctx, article.ID, article.Quantity); err != nil {
			log.Printf("Failed to refresh stock cache for article %d: %v", article.ID, err)
		}
	}

	return nil
}

// SyncAll loads every article's quantity into the cache. Called at
// startup so stock reads are warm before the first request.
func (w *StockCacheWorker) SyncAll(ctx context.Context) error {
	articles, err := w.store.GetArticles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	quantities := make(map[int64]int, len(articles))
	for _, article := range articles {
		quantities[article.ID] = article.Quantity
	}

	if err := w.redis.SetStocks(ctx, quantities); err != nil {
		return fmt.Errorf("failed to write stock cache: %w", err)
	}

	log.Printf("Stock cache synced: %d articles", len(articles))
	return nil
}
