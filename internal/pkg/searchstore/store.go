package searchstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const recordPrefix = "search:record:"

// Record is the durably persisted state of one search. It outlives the
// in-memory progress tracking.
type Record struct {
	ID        string             `json:"id"`
	Criteria  dto.SearchCriteria `json:"criteria"`
	Status    dto.SearchStatus   `json:"status"`
	Results   []dto.Offer        `json:"results,omitempty"`
	Errors    []string           `json:"errors,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Update is a partial write applied to a record.
type Update struct {
	Status  dto.SearchStatus
	Results []dto.Offer
	Errors  []string
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps search records as JSON documents on the shared store.
type RedisStore struct {
	redis RedisClient
	ttl   time.Duration
}

func NewRedisStore(redisClient RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// CreateSearch persists a pending record and returns its id.
func (s *RedisStore) CreateSearch(ctx context.Context, criteria dto.SearchCriteria) (string, error) {
	now := time.Now().UTC()
	record := Record{
		ID:        uuid.New().String(),
		Criteria:  criteria,
		Status:    dto.StatusInitializing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.write(ctx, record); err != nil {
		return "", err
	}

	return record.ID, nil
}

// UpdateSearch applies a partial update to an existing record.
func (s *RedisStore) UpdateSearch(ctx context.Context, id string, update Update) error {
	record, err := s.GetSearch(ctx, id)
	if err != nil {
		return err
	}

	if record == nil {
		return fmt.Errorf("search record %s not found", id)
	}

	if update.Status != "" {
		record.Status = update.Status
	}

	if update.Results != nil {
		record.Results = update.Results
	}

	if update.Errors != nil {
		record.Errors = update.Errors
	}

	record.UpdatedAt = time.Now().UTC()

	return s.write(ctx, *record)
}

// GetSearch returns the record, or nil when unknown.
func (s *RedisStore) GetSearch(ctx context.Context, id string) (*Record, error) {
	data, err := s.redis.Get(ctx, recordPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get search record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search record: %w", err)
	}

	return &record, nil
}

func (s *RedisStore) write(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal search record: %w", err)
	}

	if err := s.redis.Set(ctx, recordPrefix+record.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search record: %w", err)
	}

	return nil
}
