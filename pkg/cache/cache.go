package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLViewerSets = 5 * time.Minute // per-viewer block/mute id sets
	TTLDefault    = 5 * time.Minute
)

// PrefixViewer namespaces per-viewer cache keys
const PrefixViewer = "viewer:"

// ErrCacheMiss is returned when a key is not present
var ErrCacheMiss = errors.New("cache miss")

// Service Redis-backed cache for derived read models
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Viewer block/mute id sets (inputs to the visibility filter)
	GetViewerSets(ctx context.Context, viewerID string) (blocked, muted []string, err error)
	SetViewerSets(ctx context.Context, viewerID string, blocked, muted []string) error
	InvalidateViewer(ctx context.Context, viewerID string) error
}

type service struct {
	client *redis.Client
}

// NewService creates a Redis cache service
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

type viewerSets struct {
	Blocked []string `json:"blocked"`
	Muted   []string `json:"muted"`
}

func viewerKey(viewerID string) string {
	return fmt.Sprintf("%ssets:%s", PrefixViewer, viewerID)
}

func (s *service) GetViewerSets(ctx context.Context, viewerID string) ([]string, []string, error) {
	var sets viewerSets
	if err := s.Get(ctx, viewerKey(viewerID), &sets); err != nil {
		return nil, nil, err
	}
	return sets.Blocked, sets.Muted, nil
}

func (s *service) SetViewerSets(ctx context.Context, viewerID string, blocked, muted []string) error {
	return s.Set(ctx, viewerKey(viewerID), viewerSets{Blocked: blocked, Muted: muted}, TTLViewerSets)
}

func (s *service) InvalidateViewer(ctx context.Context, viewerID string) error {
	return s.Delete(ctx, viewerKey(viewerID))
}
