package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vending-backend/application/ports"
	"vending-backend/domain/vending"
)

// MockFaceGateway is a testify mock of ports.FaceGateway
type MockFaceGateway struct {
	mock.Mock
}

var _ ports.FaceGateway = (*MockFaceGateway)(nil)

func (m *MockFaceGateway) DetectEmotion(ctx context.Context) (vending.Emotion, error) {
	args := m.Called(ctx)
	return args.Get(0).(vending.Emotion), args.Error(1)
}

func (m *MockFaceGateway) DetectUserName(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockFaceGateway) SetProfileMode(ctx context.Context, cfg ports.ProfileConfig) (bool, error) {
	args := m.Called(ctx, cfg)
	return args.Bool(0), args.Error(1)
}
