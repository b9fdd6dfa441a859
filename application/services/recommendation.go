// Package services contains the application services that orchestrate the
// domain logic against the gateway ports.
package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"vending-backend/application/ports"
	domainservices "vending-backend/domain/services"
	"vending-backend/domain/vending"
	"vending-backend/pkg/observability"
)

// DefaultRecommendationWindow is the trailing span of purchase history
// considered for scoring.
const DefaultRecommendationWindow = 4 * 7 * 24 * time.Hour

// RecommendationEngine picks the product a user most characteristically
// buys around the current time, by summing temporal similarity scores over
// the recent purchase history.
type RecommendationEngine struct {
	store   ports.Store
	logger  *zap.Logger
	metrics *observability.Collector

	mu     sync.RWMutex
	scorer domainservices.TemporalScorer
	window time.Duration
}

// NewRecommendationEngine creates a new recommendation engine
func NewRecommendationEngine(store ports.Store, scorer domainservices.TemporalScorer, logger *zap.Logger) *RecommendationEngine {
	if scorer == nil {
		scorer = domainservices.NewDefaultTemporalScorer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationEngine{
		store:  store,
		scorer: scorer,
		logger: logger,
		window: DefaultRecommendationWindow,
	}
}

// WithMetrics attaches the metrics collector.
func (e *RecommendationEngine) WithMetrics(metrics *observability.Collector) *RecommendationEngine {
	e.metrics = metrics
	return e
}

// SetScorer swaps the temporal scorer, e.g. after a policy reload changed
// the similarity weights. A nil scorer is ignored.
func (e *RecommendationEngine) SetScorer(scorer domainservices.TemporalScorer) {
	if scorer == nil {
		return
	}
	e.mu.Lock()
	e.scorer = scorer
	e.mu.Unlock()
}

// SetWindow changes the history window, e.g. after a policy reload.
func (e *RecommendationEngine) SetWindow(window time.Duration) {
	if window <= 0 {
		return
	}
	e.mu.Lock()
	e.window = window
	e.mu.Unlock()
}

// Window returns the currently configured history window.
func (e *RecommendationEngine) Window() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.window
}

// Recommend returns the best product for the user at the given instant, or
// nil when no suggestion is available. A failing or empty history fetch is
// not an error for the caller: the dialog simply proceeds without an offer.
// The reference instant is a parameter so the scoring stays deterministic
// under test.
func (e *RecommendationEngine) Recommend(ctx context.Context, userID int64, now time.Time) *vending.Product {
	e.mu.RLock()
	scorer, window := e.scorer, e.window
	e.mu.RUnlock()

	since := now.Add(-window)

	orders, err := e.store.OrdersSince(ctx, userID, since)
	if err != nil {
		e.logger.Warn("recommendation history fetch failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return e.skipped()
	}
	if len(orders) == 0 {
		return e.skipped()
	}

	// Repeated purchases at similar times reinforce the score
	scores := make(map[int64]float64, len(orders))
	for _, order := range orders {
		if order.Timestamp.IsZero() {
			continue
		}
		scores[order.ProductID] += scorer.Score(order.Timestamp, now)
	}

	// Strictly greatest accumulated score wins; equal scores fall back to
	// the lowest product ID so the result does not depend on map order.
	var bestID int64
	bestScore := 0.0
	for productID, score := range scores {
		e.logger.Debug("product scored",
			zap.Int64("product_id", productID),
			zap.Float64("score", score),
		)
		if score > bestScore || (score == bestScore && bestID != 0 && productID < bestID) {
			bestID = productID
			bestScore = score
		}
	}
	if bestID == 0 {
		return e.skipped()
	}

	product, err := e.store.ProductByID(ctx, bestID)
	if err != nil || product == nil {
		e.logger.Warn("recommended product lookup failed",
			zap.Int64("product_id", bestID),
			zap.Error(err),
		)
		return e.skipped()
	}

	if e.metrics != nil {
		e.metrics.RecommendationsServed.Inc()
	}
	return product
}

// skipped counts a turn that produced no usable suggestion.
func (e *RecommendationEngine) skipped() *vending.Product {
	if e.metrics != nil {
		e.metrics.RecommendationsSkipped.Inc()
	}
	return nil
}
