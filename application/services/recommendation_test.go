package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vending-backend/domain/vending"
	"vending-backend/tests/mocks"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) // Monday 09:00

func orderAt(productID int64, ts time.Time) vending.PurchaseEvent {
	return vending.PurchaseEvent{ProductID: productID, UserID: 42, Timestamp: ts}
}

func TestRecommend_PrefersProductBoughtNearCurrentTime(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockStore)
	logger := zap.NewNop()

	coffee := &vending.Product{ID: 1, Name: "Coffee", Price: 1.5}

	// Three coffees around Monday morning, one cola on Thursday evening
	history := []vending.PurchaseEvent{
		orderAt(1, testNow.AddDate(0, 0, -7)),                    // last Monday 09:00
		orderAt(1, testNow.AddDate(0, 0, -14).Add(30*time.Minute)), // two Mondays ago 09:30
		orderAt(1, testNow.AddDate(0, 0, -21)),
		orderAt(2, time.Date(2024, 6, 6, 21, 0, 0, 0, time.UTC)), // Thursday 21:00
	}

	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).Return(history, nil)
	store.On("ProductByID", ctx, int64(1)).Return(coffee, nil)

	engine := NewRecommendationEngine(store, nil, logger)

	// Act
	got := engine.Recommend(ctx, 42, testNow)

	// Assert
	require.NotNil(t, got)
	assert.Equal(t, "Coffee", got.Name)
	store.AssertExpectations(t)
}

func TestRecommend_NoHistoryReturnsNil(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).
		Return([]vending.PurchaseEvent{}, nil)

	engine := NewRecommendationEngine(store, nil, zap.NewNop())

	assert.Nil(t, engine.Recommend(ctx, 42, testNow))
	store.AssertExpectations(t)
}

func TestRecommend_StoreFailureReturnsNil(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("connection refused"))

	engine := NewRecommendationEngine(store, nil, zap.NewNop())

	assert.Nil(t, engine.Recommend(ctx, 42, testNow))
	store.AssertExpectations(t)
}

func TestRecommend_SkipsEventsWithoutTimestamp(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	history := []vending.PurchaseEvent{
		{ProductID: 7, UserID: 42}, // zero timestamp, ignored
	}
	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).
		Return(history, nil)

	engine := NewRecommendationEngine(store, nil, zap.NewNop())

	assert.Nil(t, engine.Recommend(ctx, 42, testNow))
	store.AssertExpectations(t)
}

func TestRecommend_TieBreaksOnLowestProductID(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	water := &vending.Product{ID: 3, Name: "Water"}

	// Identical timestamps, so identical accumulated scores
	ts := testNow.AddDate(0, 0, -7)
	history := []vending.PurchaseEvent{
		orderAt(9, ts),
		orderAt(3, ts),
		orderAt(5, ts),
	}
	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).Return(history, nil)
	store.On("ProductByID", ctx, int64(3)).Return(water, nil)

	engine := NewRecommendationEngine(store, nil, zap.NewNop())

	for i := 0; i < 10; i++ {
		got := engine.Recommend(ctx, 42, testNow)
		require.NotNil(t, got)
		assert.Equal(t, int64(3), got.ID)
	}
}

func TestRecommend_DeterministicForFixedNow(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	cola := &vending.Product{ID: 2, Name: "Cola"}
	history := []vending.PurchaseEvent{
		orderAt(2, testNow.AddDate(0, 0, -1)),
		orderAt(8, testNow.AddDate(0, 0, -3).Add(11*time.Hour)),
	}
	store.On("OrdersSince", ctx, int64(42), mock.AnythingOfType("time.Time")).Return(history, nil)
	store.On("ProductByID", ctx, int64(2)).Return(cola, nil)

	engine := NewRecommendationEngine(store, nil, zap.NewNop())

	first := engine.Recommend(ctx, 42, testNow)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.ID, engine.Recommend(ctx, 42, testNow).ID)
	}
}

func TestRecommend_WindowBoundsHistoryFetch(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockStore)

	engine := NewRecommendationEngine(store, nil, zap.NewNop())
	engine.SetWindow(7 * 24 * time.Hour)

	store.On("OrdersSince", ctx, int64(42), testNow.AddDate(0, 0, -7)).
		Return([]vending.PurchaseEvent{}, nil)

	assert.Nil(t, engine.Recommend(ctx, 42, testNow))
	store.AssertExpectations(t)
}
