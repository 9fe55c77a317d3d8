package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"agrosnap-server/internal/core/providers/marketdata"
	"agrosnap-server/internal/core/providers/vision"
)

// MockVisionProvider is a testify mock for vision.Provider.
type MockVisionProvider struct {
	mock.Mock
}

func (m *MockVisionProvider) Name() string { return "mock" }

func (m *MockVisionProvider) Analyze(ctx context.Context, req vision.Request) (*vision.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*vision.Response)
	return resp, args.Error(1)
}

func (m *MockVisionProvider) Generate(ctx context.Context, prompt string) (*vision.Response, error) {
	args := m.Called(ctx, prompt)
	resp, _ := args.Get(0).(*vision.Response)
	return resp, args.Error(1)
}

// MockPriceSource is a testify mock for the market price client.
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) Prices(ctx context.Context, q marketdata.Query) ([]byte, error) {
	args := m.Called(ctx, q)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}
