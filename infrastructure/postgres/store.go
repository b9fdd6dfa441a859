// Package postgres implements the store gateway on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"vending-backend/domain/vending"
	"vending-backend/infrastructure/config"
	apperrors "vending-backend/pkg/errors"
	"vending-backend/pkg/observability"
)

// Store implements ports.Store using PostgreSQL.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewStore creates a new PostgreSQL store. Every query is bounded by the
// given timeout so a stuck database can never hang a voice turn.
func NewStore(cfg config.PostgresConfig, timeout time.Duration, metrics *observability.Collector, logger *zap.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{db: db, timeout: timeout, metrics: metrics, logger: logger}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

const productColumns = `
	SELECT p.id, p.name, p.price, p.emotion,
	       COALESCE(p.image_url, ''), COALESCE(p.brand, ''),
	       COALESCE(array_agg(pc.category_id) FILTER (WHERE pc.category_id IS NOT NULL), '{}')
	FROM products p
	LEFT JOIN product_categories pc ON pc.product_id = p.id`

func (s *Store) scanProduct(row *sql.Row) (*vending.Product, error) {
	var p vending.Product
	var emotion string
	var categoryIDs pq.Int64Array

	err := row.Scan(&p.ID, &p.Name, &p.Price, &emotion, &p.ImageURL, &p.Brand, &categoryIDs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Emotion = vending.ParseEmotion(emotion)
	p.CategoryIDs = categoryIDs
	return &p, nil
}

// ProductByName resolves a product by case-insensitive name match.
func (s *Store) ProductByName(ctx context.Context, name string) (*vending.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := productColumns + `
	WHERE LOWER(p.name) LIKE LOWER($1)
	GROUP BY p.id
	LIMIT 1`

	product, err := s.scanProduct(s.db.QueryRowContext(ctx, query, name))
	s.metrics.ObserveDBOperation("product_by_name", err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("product lookup failed", err)
	}
	return product, nil
}

// ProductByID resolves a product by its identifier.
func (s *Store) ProductByID(ctx context.Context, id int64) (*vending.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := productColumns + `
	WHERE p.id = $1
	GROUP BY p.id`

	product, err := s.scanProduct(s.db.QueryRowContext(ctx, query, id))
	s.metrics.ObserveDBOperation("product_by_id", err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("product lookup failed", err)
	}
	return product, nil
}

// UserByName resolves a user by case-insensitive name match.
func (s *Store) UserByName(ctx context.Context, name string) (*vending.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := `SELECT id, name FROM users WHERE LOWER(name) LIKE LOWER($1) LIMIT 1`

	var user vending.User
	err := s.db.QueryRowContext(ctx, query, name).Scan(&user.ID, &user.Name)
	if err == sql.ErrNoRows {
		s.metrics.ObserveDBOperation("user_by_name", nil, time.Since(start))
		return nil, nil
	}
	s.metrics.ObserveDBOperation("user_by_name", err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("user lookup failed", err)
	}
	return &user, nil
}

// OrdersSince lists the purchases of a user newer than the given instant.
func (s *Store) OrdersSince(ctx context.Context, userID int64, since time.Time) ([]vending.PurchaseEvent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := `
	SELECT product_id, COALESCE(user_id, 0), created_at
	FROM orders
	WHERE user_id = $1 AND created_at > $2`

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		s.metrics.ObserveDBOperation("orders_since", err, time.Since(start))
		return nil, apperrors.NewServiceUnavailable("order history fetch failed", err)
	}
	defer rows.Close()

	var events []vending.PurchaseEvent
	for rows.Next() {
		var e vending.PurchaseEvent
		if err := rows.Scan(&e.ProductID, &e.UserID, &e.Timestamp); err != nil {
			s.metrics.ObserveDBOperation("orders_since", err, time.Since(start))
			return nil, apperrors.NewServiceUnavailable("order history scan failed", err)
		}
		events = append(events, e)
	}
	err = rows.Err()
	s.metrics.ObserveDBOperation("orders_since", err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("order history fetch failed", err)
	}
	return events, nil
}

func (s *Store) queryProducts(ctx context.Context, operation, query string, args ...any) ([]vending.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.metrics.ObserveDBOperation(operation, err, time.Since(start))
		return nil, apperrors.NewServiceUnavailable("product list fetch failed", err)
	}
	defer rows.Close()

	var products []vending.Product
	for rows.Next() {
		var p vending.Product
		var emotion string
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &emotion, &p.ImageURL, &p.Brand); err != nil {
			s.metrics.ObserveDBOperation(operation, err, time.Since(start))
			return nil, apperrors.NewServiceUnavailable("product list scan failed", err)
		}
		p.Emotion = vending.ParseEmotion(emotion)
		products = append(products, p)
	}
	err = rows.Err()
	s.metrics.ObserveDBOperation(operation, err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("product list fetch failed", err)
	}
	return products, nil
}

// ProductsByCategory lists all products in the named category.
func (s *Store) ProductsByCategory(ctx context.Context, category string) ([]vending.Product, error) {
	query := `
	SELECT p.id, p.name, p.price, p.emotion, COALESCE(p.image_url, ''), COALESCE(p.brand, '')
	FROM products p
	JOIN product_categories pc ON p.id = pc.product_id
	JOIN categories c ON pc.category_id = c.id
	WHERE c.name = $1
	ORDER BY p.id`
	return s.queryProducts(ctx, "products_by_category", query, category)
}

// ProductsByCategoryAndEmotion lists products in the named category tagged
// with the given emotion.
func (s *Store) ProductsByCategoryAndEmotion(ctx context.Context, category string, emotion vending.Emotion) ([]vending.Product, error) {
	query := `
	SELECT p.id, p.name, p.price, p.emotion, COALESCE(p.image_url, ''), COALESCE(p.brand, '')
	FROM products p
	JOIN product_categories pc ON p.id = pc.product_id
	JOIN categories c ON pc.category_id = c.id
	WHERE c.name = $1 AND p.emotion = $2
	ORDER BY p.id`
	return s.queryProducts(ctx, "products_by_category_and_emotion", query, category, string(emotion))
}

// CategoriesOfProduct lists the categories a product belongs to.
func (s *Store) CategoriesOfProduct(ctx context.Context, productID int64) ([]vending.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := `
	SELECT c.id, c.name
	FROM categories c
	JOIN product_categories pc ON pc.category_id = c.id
	WHERE pc.product_id = $1
	ORDER BY c.id`

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		s.metrics.ObserveDBOperation("categories_of_product", err, time.Since(start))
		return nil, apperrors.NewServiceUnavailable("category fetch failed", err)
	}
	defer rows.Close()

	var categories []vending.Category
	for rows.Next() {
		var c vending.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			s.metrics.ObserveDBOperation("categories_of_product", err, time.Since(start))
			return nil, apperrors.NewServiceUnavailable("category scan failed", err)
		}
		categories = append(categories, c)
	}
	err = rows.Err()
	s.metrics.ObserveDBOperation("categories_of_product", err, time.Since(start))
	if err != nil {
		return nil, apperrors.NewServiceUnavailable("category fetch failed", err)
	}
	return categories, nil
}

// RecordOrder persists a confirmed purchase. A zero userID records an
// anonymous cash purchase as a NULL user reference.
func (s *Store) RecordOrder(ctx context.Context, productID, userID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	query := `INSERT INTO orders (id, product_id, user_id, created_at) VALUES ($1, $2, $3, $4)`

	var user sql.NullInt64
	if userID != 0 {
		user = sql.NullInt64{Int64: userID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), productID, user, time.Now().UTC())
	s.metrics.ObserveDBOperation("record_order", err, time.Since(start))
	if err != nil {
		return apperrors.NewServiceUnavailable("order persist failed", err)
	}

	if s.metrics != nil {
		s.metrics.OrdersRecorded.Inc()
	}
	return nil
}
