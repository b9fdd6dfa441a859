package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vending-backend/domain/vending"
	"vending-backend/tests/mocks"
)

func TestCachedStore_ProductByNameCachesHits(t *testing.T) {
	inner := new(mocks.MockStore)
	inner.On("ProductByName", context.Background(), "Cola").
		Return(&vending.Product{ID: 1, Name: "Cola", Price: 1.5}, nil).Once()

	store := NewCachedStore(inner, time.Minute, nil)

	for i := 0; i < 3; i++ {
		product, err := store.ProductByName(context.Background(), "Cola")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, int64(1), product.ID)
	}

	inner.AssertExpectations(t)
}

func TestCachedStore_DoesNotCacheMisses(t *testing.T) {
	inner := new(mocks.MockStore)
	inner.On("ProductByName", context.Background(), "Caviar").
		Return(nil, nil).Twice()

	store := NewCachedStore(inner, time.Minute, nil)

	for i := 0; i < 2; i++ {
		product, err := store.ProductByName(context.Background(), "Caviar")
		require.NoError(t, err)
		assert.Nil(t, product)
	}

	inner.AssertExpectations(t)
}

func TestCachedStore_OrderHistoryIsNeverCached(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	inner := new(mocks.MockStore)
	inner.On("OrdersSince", context.Background(), int64(7), since).
		Return([]vending.PurchaseEvent{}, nil).Twice()

	store := NewCachedStore(inner, time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := store.OrdersSince(context.Background(), 7, since)
		require.NoError(t, err)
	}

	inner.AssertExpectations(t)
}
