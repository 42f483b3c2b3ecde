package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"go-doc-library/internal/model"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Store(ctx context.Context, content io.Reader, originalName string, size int64, category model.Category) (StoredObject, error) {
	args := m.Called(ctx, content, originalName, size, category)
	return args.Get(0).(StoredObject), args.Error(1)
}

func (m *MockBackend) Locate(ctx context.Context, key string) (model.Locator, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.Locator), args.Error(1)
}

func (m *MockBackend) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) Kind() Kind {
	args := m.Called()
	return args.Get(0).(Kind)
}
