// Package discovery provides a Redis-backed service registry.
//
// Each running instance writes a key with a TTL and keeps it alive with a
// heartbeat. Callers resolve a service name to the base URL of one of its
// live instances. An instance that stops heartbeating disappears once its
// key expires.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "discovery:"

	// DefaultTTL is how long a registration survives without a heartbeat.
	DefaultTTL = 30 * time.Second

	scanBatch = 100
)

// Common discovery errors.
var (
	ErrNoInstances     = errors.New("no live instances registered")
	ErrInvalidInstance = errors.New("invalid service instance")
)

// Instance describes a running instance of a service.
type Instance struct {
	ID           string    `json:"id"`
	Service      string    `json:"service"`
	URL          string    `json:"url"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewInstance creates an Instance with a fresh ID.
func NewInstance(service, url string) Instance {
	return Instance{
		ID:           ulid.Make().String(),
		Service:      service,
		URL:          strings.TrimSuffix(url, "/"),
		RegisteredAt: time.Now().UTC(),
	}
}

// Validate checks that the instance can be registered.
func (i Instance) Validate() error {
	if i.ID == "" || i.Service == "" || i.URL == "" {
		return ErrInvalidInstance
	}
	if strings.Contains(i.Service, ":") {
		return fmt.Errorf("%w: service name must not contain ':'", ErrInvalidInstance)
	}
	return nil
}

// Registry stores service instances in Redis.
type Registry struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRegistry creates a Registry. A non-positive ttl selects DefaultTTL.
func NewRegistry(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "discovery.registry"),
	}
}

// TTL returns the registration lifetime.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Register writes the instance with the registry TTL.
func (r *Registry) Register(ctx context.Context, inst Instance) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}

	if err := r.client.Set(ctx, instanceKey(inst.Service, inst.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	return nil
}

// Deregister removes an instance.
func (r *Registry) Deregister(ctx context.Context, service, instanceID string) error {
	if err := r.client.Del(ctx, instanceKey(service, instanceID)).Err(); err != nil {
		return fmt.Errorf("failed to deregister instance: %w", err)
	}
	return nil
}

// Heartbeat keeps the registration alive until ctx is done.
// It re-registers when the key has already expired.
func (r *Registry) Heartbeat(ctx context.Context, inst Instance, interval time.Duration) {
	if interval <= 0 {
		interval = r.ttl / 3
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := r.client.Expire(ctx, instanceKey(inst.Service, inst.ID), r.ttl).Result()
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Warn("heartbeat failed", "service", inst.Service, "instance_id", inst.ID, "error", err)
				}
				continue
			}
			if !ok {
				if err := r.Register(ctx, inst); err != nil && ctx.Err() == nil {
					r.logger.Warn("re-registration failed", "service", inst.Service, "instance_id", inst.ID, "error", err)
				}
			}
		}
	}
}

// Announce registers inst and heartbeats it in the background. The returned
// stop function ends the heartbeat and deletes the registration.
func (r *Registry) Announce(ctx context.Context, inst Instance) (func(context.Context) error, error) {
	if err := r.Register(ctx, inst); err != nil {
		return nil, err
	}
	r.logger.Info("instance registered", "service", inst.Service, "instance_id", inst.ID, "url", inst.URL, "ttl", r.ttl)

	hbCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Heartbeat(hbCtx, inst, 0)
	}()

	return func(ctx context.Context) error {
		cancel()
		<-done
		return r.Deregister(ctx, inst.Service, inst.ID)
	}, nil
}

// Instances returns the live instances of a service ordered by ID.
func (r *Registry) Instances(ctx context.Context, service string) ([]Instance, error) {
	keys, err := r.scanKeys(ctx, servicePattern(service))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read instances: %w", err)
	}

	instances := make([]Instance, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Expired between SCAN and MGET.
			continue
		}
		var inst Instance
		if err := json.Unmarshal([]byte(raw), &inst); err != nil {
			r.logger.Warn("skipping malformed registration", "key", keys[i], "error", err)
			continue
		}
		instances = append(instances, inst)
	}

	sort.Slice(instances, func(a, b int) bool { return instances[a].ID < instances[b].ID })
	return instances, nil
}

func (r *Registry) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan instances: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

func instanceKey(service, id string) string {
	return keyPrefix + service + ":" + id
}

func servicePattern(service string) string {
	return keyPrefix + service + ":*"
}
