// Package mocks provides testify mocks for the gateway ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
)

// MockStore is a testify mock of ports.Store
type MockStore struct {
	mock.Mock
}

var _ ports.Store = (*MockStore)(nil)

func (m *MockStore) ProductByName(ctx context.Context, name string) (*vending.Product, error) {
	args := m.Called(ctx, name)
	if p := args.Get(0); p != nil {
		return p.(*vending.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ProductByID(ctx context.Context, id int64) (*vending.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*vending.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UserByName(ctx context.Context, name string) (*vending.User, error) {
	args := m.Called(ctx, name)
	if u := args.Get(0); u != nil {
		return u.(*vending.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) OrdersSince(ctx context.Context, userID int64, since time.Time) ([]vending.PurchaseEvent, error) {
	args := m.Called(ctx, userID, since)
	if o := args.Get(0); o != nil {
		return o.([]vending.PurchaseEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ProductsByCategory(ctx context.Context, category string) ([]vending.Product, error) {
	args := m.Called(ctx, category)
	if p := args.Get(0); p != nil {
		return p.([]vending.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ProductsByCategoryAndEmotion(ctx context.Context, category string, emotion vending.Emotion) ([]vending.Product, error) {
	args := m.Called(ctx, category, emotion)
	if p := args.Get(0); p != nil {
		return p.([]vending.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CategoriesOfProduct(ctx context.Context, productID int64) ([]vending.Category, error) {
	args := m.Called(ctx, productID)
	if c := args.Get(0); c != nil {
		return c.([]vending.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) RecordOrder(ctx context.Context, productID, userID int64) error {
	args := m.Called(ctx, productID, userID)
	return args.Error(0)
}
