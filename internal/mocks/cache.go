package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"
)

type Cache struct {
	mock.Mock
}

// GetJSON fills dest from the first return value when it is a []byte of JSON.
func (m *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	args := m.Called(ctx, key, dest)
	if raw, ok := args.Get(0).([]byte); ok {
		if err := json.Unmarshal(raw, dest); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *Cache) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *Cache) AddJSON(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *Cache) Close() error {
	return m.Called().Error(0)
}
