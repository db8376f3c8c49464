package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"webshop-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetArticle retrieves an article by ID
func (s *Store) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var article models.Article
	err := s.db.GetContext(ctx, &article, "SELECT * FROM articles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticles retrieves all articles
func (s *Store) GetArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.SelectContext(ctx, &articles, "SELECT * FROM articles ORDER BY id")
	return articles, err
}

// GetAvailableArticles retrieves articles with stock remaining
func (s *Store) GetAvailableArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.SelectContext(ctx, &articles,
		"SELECT * FROM articles WHERE quantity > 0 ORDER BY id")
	return articles, err
}

// CreateArticle inserts a new article
func (s *Store) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (name, description, price, quantity, image_base64)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, article, query,
		article.Name, article.Description, article.Price, article.Quantity, article.ImageBase64)
}

// PutArticle replaces the full article record and returns the persisted row.
// Callers must send back all fields, not just the ones they changed.
func (s *Store) PutArticle(ctx context.Context, id int64, article *models.Article) (*models.Article, error) {
	query := `
		UPDATE articles
		SET name = $1, description = $2, price = $3, quantity = $4, image_base64 = $5
		WHERE id = $6
		RETURNING *`

	var updated models.Article
	err := s.db.GetContext(ctx, &updated, query,
		article.Name, article.Description, article.Price, article.Quantity, article.ImageBase64, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
