package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"webshop-service/internal/models"
)

type fakeArticleStore struct {
	mu       sync.Mutex
	articles map[int64]*models.Article
	gets     int
	puts     int
	getErr   error
	putErr   error
}

func newFakeArticleStore(articles ...*models.Article) *fakeArticleStore {
	f := &fakeArticleStore{articles: make(map[int64]*models.Article)}
	for _, a := range articles {
		cp := *a
		f.articles[a.ID] = &cp
	}
	return f
}

func (f *fakeArticleStore) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, fmt.Errorf("article not found: %d", id)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArticleStore) GetArticles(ctx context.Context) ([]models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Article, 0, len(f.articles))
	for _, a := range f.articles {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeArticleStore) PutArticle(ctx context.Context, id int64, article *models.Article) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	cp := *article
	cp.ID = id
	f.articles[id] = &cp
	out := cp
	return &out, nil
}

func (f *fakeArticleStore) quantity(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.articles[id].Quantity
}

func (f *fakeArticleStore) counts() (gets, puts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.puts
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	gets   int
	puts   int
	putErr error
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	f := &fakeOrderStore{orders: make(map[int64]*models.Order)}
	for _, o := range orders {
		cp := *o
		f.orders[o.ID] = &cp
	}
	return f
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) PutOrder(ctx context.Context, id int64, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts++
	if f.putErr != nil {
		return nil, f.putErr
	}
	cp := *order
	cp.ID = id
	f.orders[id] = &cp
	out := cp
	return &out, nil
}

func (f *fakeOrderStore) status(id int64) models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

func (f *fakeOrderStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

type fakePublisher struct {
	mu            sync.Mutex
	statusChanged []*models.OrderStatusChangedEvent
	flagged       []*models.OrderFlaggedEvent
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanged = append(f.statusChanged, event)
	return nil
}

func (f *fakePublisher) PublishOrderFlagged(ctx context.Context, event *models.OrderFlaggedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flagged = append(f.flagged, event)
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	stocks map[int64]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{stocks: make(map[int64]int)}
}

func (f *fakeCache) SetStock(ctx context.Context, articleID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stocks[articleID] = quantity
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[lockKey] {
		return false, nil
	}
	f.held[lockKey] = true
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, lockKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, lockKey)
	return nil
}
