package fulfillment

import (
	"context"
	"time"

	"webshop-service/internal/models"
	"webshop-service/internal/util"

	"go.uber.org/zap"
)

// ArticleStore is the article storage contract the adjuster consumes.
// Put has full-record replace semantics and returns the persisted row.
type ArticleStore interface {
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	GetArticles(ctx context.Context) ([]models.Article, error)
	PutArticle(ctx context.Context, id int64, article *models.Article) (*models.Article, error)
}

// StockCache mirrors article quantities into a fast read path. Cache
// writes are best-effort; the store stays the source of truth.
type StockCache interface {
	SetStock(ctx context.Context, articleID int64, quantity int) error
}

// StockAdjuster applies signed stock deltas to articles through a guarded
// read-modify-write against the article store. The read and write are not
// atomic at the store, so the adjuster serializes them per article with an
// in-process lock; two concurrent adjustments to the same article can
// never both read the same pre-adjustment quantity.
type StockAdjuster struct {
	store  ArticleStore
	cache  StockCache
	locks  *keyedMutex
	logger *zap.Logger
}

// NewStockAdjuster creates a new stock adjuster. cache may be nil.
func NewStockAdjuster(store ArticleStore, cache StockCache) *StockAdjuster {
	return &StockAdjuster{
		store:  store,
		cache:  cache,
		locks:  newKeyedMutex(),
		logger: util.GetLogger(),
	}
}

// Adjust applies delta to one article's stock. Negative consumes stock,
// positive restores it. If the result would be negative, the article is
// not written and an InsufficientStockError names the article and the
// shortfall. On success the updated article record is returned.
func (a *StockAdjuster) Adjust(ctx context.Context, articleID int64, delta int) (*models.Article, error) {
	ctx, span := util.StartSpan(ctx, "StockAdjuster.Adjust")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StockAdjustLatency.Observe(time.Since(start).Seconds())
	}()

	unlock := a.locks.Lock(articleID)
	defer unlock()

	article, err := a.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, &StoreError{Op: "get article", Err: err}
	}

	newQuantity := article.Quantity + delta
	if newQuantity < 0 {
		util.InsufficientStockTotal.Inc()
		return nil, &InsufficientStockError{
			ArticleID: articleID,
			Requested: -delta,
			Available: article.Quantity,
		}
	}

	article.Quantity = newQuantity
	updated, err := a.store.PutArticle(ctx, articleID, article)
	if err != nil {
		return nil, &StoreError{Op: "put article", Err: err}
	}

	direction := "consume"
	if delta > 0 {
		direction = "restore"
	}
	util.StockAdjustmentsTotal.WithLabelValues(direction).Inc()

	if a.cache != nil {
		if err := a.cache.SetStock(ctx, articleID, updated.Quantity); err != nil {
			a.logger.Warn("Failed to update stock cache",
				zap.Int64("article_id", articleID),
				zap.Error(err))
		}
	}

	return updated, nil
}
