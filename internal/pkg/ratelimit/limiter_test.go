//go:build unit

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockRedisClient struct {
	mock.Mock
}

func NewMockRedisClient(t *testing.T) *MockRedisClient {
	m := &MockRedisClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)

	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(ctx, key)

	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, expiration)

	return args.Get(0).(*redis.BoolCmd)
}

func TestLimiter_Allow_Closure(t *testing.T) {
	allowRequest := func(mockSetup func(m *MockRedisClient), quota Quota, want bool, wantErr bool) func(t *testing.T) {
		return func(t *testing.T) {
			m := NewMockRedisClient(t)
			mockSetup(m)
			l := NewLimiter(m, nil, quota)

			got, err := l.Allow(context.Background(), "Amadeus")
			if (err != nil) != wantErr {
				t.Fatalf("Allow error = %v, wantErr %v", err, wantErr)
			}

			if got != want {
				t.Fatalf("Allow = %v, want %v", got, want)
			}
		}
	}

	quota := Quota{PerMinute: 60, PerHour: 1000}

	t.Run("fresh_source_allowed", allowRequest(func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewStringResult("", redis.Nil))
		m.On("Get", mock.Anything, "ratelimit:Amadeus:hour").Return(redis.NewStringResult("", redis.Nil))
	}, quota, true, false))

	t.Run("under_both_ceilings", allowRequest(func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewStringResult("59", nil))
		m.On("Get", mock.Anything, "ratelimit:Amadeus:hour").Return(redis.NewStringResult("999", nil))
	}, quota, true, false))

	t.Run("minute_ceiling_hit", allowRequest(func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewStringResult("60", nil))
	}, quota, false, false))

	t.Run("hour_ceiling_hit", allowRequest(func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewStringResult("1", nil))
		m.On("Get", mock.Anything, "ratelimit:Amadeus:hour").Return(redis.NewStringResult("1000", nil))
	}, quota, false, false))

	t.Run("store_failure_propagates", allowRequest(func(m *MockRedisClient) {
		m.On("Get", mock.Anything, "ratelimit:Amadeus:minute").
			Return(redis.NewStringResult("", errors.New("connection refused")))
	}, quota, false, true))
}

func TestLimiter_Allow_PerSourceQuota(t *testing.T) {
	m := NewMockRedisClient(t)
	m.On("Get", mock.Anything, "ratelimit:Sabre:minute").Return(redis.NewStringResult("5", nil))

	l := NewLimiter(m, map[string]Quota{
		"Sabre": {PerMinute: 5, PerHour: 100},
	}, Quota{PerMinute: 60, PerHour: 1000})

	got, err := l.Allow(context.Background(), "Sabre")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}

	if got {
		t.Fatal("per-source ceiling must override the default")
	}
}

func TestLimiter_Record_Closure(t *testing.T) {
	recordRequest := func(mockSetup func(m *MockRedisClient), wantErr bool) func(t *testing.T) {
		return func(t *testing.T) {
			m := NewMockRedisClient(t)
			mockSetup(m)
			l := NewLimiter(m, nil, Quota{PerMinute: 60, PerHour: 1000})

			err := l.Record(context.Background(), "Amadeus")
			if (err != nil) != wantErr {
				t.Fatalf("Record error = %v, wantErr %v", err, wantErr)
			}
		}
	}

	t.Run("first_increment_arms_ttl", recordRequest(func(m *MockRedisClient) {
		m.On("Incr", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewIntResult(1, nil))
		m.On("Expire", mock.Anything, "ratelimit:Amadeus:minute", time.Minute).Return(redis.NewBoolResult(true, nil))
		m.On("Incr", mock.Anything, "ratelimit:Amadeus:hour").Return(redis.NewIntResult(1, nil))
		m.On("Expire", mock.Anything, "ratelimit:Amadeus:hour", time.Hour).Return(redis.NewBoolResult(true, nil))
	}, false))

	t.Run("later_increments_keep_ttl", recordRequest(func(m *MockRedisClient) {
		m.On("Incr", mock.Anything, "ratelimit:Amadeus:minute").Return(redis.NewIntResult(7, nil))
		m.On("Incr", mock.Anything, "ratelimit:Amadeus:hour").Return(redis.NewIntResult(42, nil))
	}, false))

	t.Run("increment_failure_propagates", recordRequest(func(m *MockRedisClient) {
		m.On("Incr", mock.Anything, "ratelimit:Amadeus:minute").
			Return(redis.NewIntResult(0, errors.New("connection refused")))
	}, true))
}
