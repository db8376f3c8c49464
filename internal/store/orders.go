package store

import (
	"context"
	"database/sql"
	"fmt"

	"webshop-service/internal/models"
)

// CreateOrder inserts a new order in its initial status
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (customer_firstname, customer_lastname, customer_email,
			customer_phone, customer_address, items, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, order, query,
		order.CustomerFirstname, order.CustomerLastname, order.CustomerEmail,
		order.CustomerPhone, order.CustomerAddress, order.Items, order.Status)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// PutOrder replaces the full order record and returns the persisted row,
// which is the authoritative representation relayed back to callers.
func (s *Store) PutOrder(ctx context.Context, id int64, order *models.Order) (*models.Order, error) {
	query := `
		UPDATE orders
		SET customer_firstname = $1, customer_lastname = $2, customer_email = $3,
			customer_phone = $4, customer_address = $5, items = $6, status = $7,
			processed_at = $8
		WHERE id = $9
		RETURNING *`

	var updated models.Order
	err := s.db.GetContext(ctx, &updated, query,
		order.CustomerFirstname, order.CustomerLastname, order.CustomerEmail,
		order.CustomerPhone, order.CustomerAddress, order.Items, order.Status,
		order.ProcessedAt, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
