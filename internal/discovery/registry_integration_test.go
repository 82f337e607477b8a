//go:build integration

package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetlink/fleetlink/internal/testutil"
)

func newRegistryTestEnv(t *testing.T, ttl time.Duration) (context.Context, *Registry) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	if err := testutil.FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, NewRegistry(client, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIntegrationRegistry_RegisterAndResolve(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Minute)

	inst := NewInstance("customer-service", "http://customers-1:8081")
	if err := reg.Register(ctx, inst); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	instances, err := reg.Instances(ctx, "customer-service")
	if err != nil {
		t.Fatalf("Instances failed: %v", err)
	}
	if len(instances) != 1 || instances[0].URL != inst.URL {
		t.Fatalf("unexpected instances: %+v", instances)
	}

	url, err := reg.Resolver("customer-service").Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url != inst.URL {
		t.Errorf("Resolve = %q, want %q", url, inst.URL)
	}
}

func TestIntegrationRegistry_Deregister(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Minute)

	inst := NewInstance("customer-service", "http://customers-1:8081")
	if err := reg.Register(ctx, inst); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Deregister(ctx, inst.Service, inst.ID); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}

	_, err := reg.Resolver("customer-service").Resolve(ctx)
	if !errors.Is(err, ErrNoInstances) {
		t.Errorf("expected ErrNoInstances after deregister, got %v", err)
	}
}

func TestIntegrationRegistry_ExpiresWithoutHeartbeat(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Second)

	inst := NewInstance("customer-service", "http://customers-1:8081")
	if err := reg.Register(ctx, inst); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	instances, err := reg.Instances(ctx, "customer-service")
	if err != nil {
		t.Fatalf("Instances failed: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("expected registration to expire, got %+v", instances)
	}
}

func TestIntegrationRegistry_HeartbeatKeepsAlive(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Second)

	inst := NewInstance("customer-service", "http://customers-1:8081")
	if err := reg.Register(ctx, inst); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go reg.Heartbeat(hbCtx, inst, 200*time.Millisecond)

	time.Sleep(1500 * time.Millisecond)

	instances, err := reg.Instances(ctx, "customer-service")
	if err != nil {
		t.Fatalf("Instances failed: %v", err)
	}
	if len(instances) != 1 {
		t.Errorf("expected heartbeat to keep registration alive, got %+v", instances)
	}
}

func TestIntegrationRegistry_Announce(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Minute)

	inst := NewInstance("vehicle-service", "http://vehicles-1:8080")
	stop, err := reg.Announce(ctx, inst)
	if err != nil {
		t.Fatalf("Announce failed: %v", err)
	}

	instances, err := reg.Instances(ctx, "vehicle-service")
	if err != nil {
		t.Fatalf("Instances failed: %v", err)
	}
	if len(instances) != 1 || instances[0].ID != inst.ID {
		t.Fatalf("unexpected instances: %+v", instances)
	}

	if err := stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	instances, err = reg.Instances(ctx, "vehicle-service")
	if err != nil {
		t.Fatalf("Instances failed: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("expected no instances after stop, got %+v", instances)
	}
}

func TestIntegrationRegistry_AnnounceInvalid(t *testing.T) {
	ctx, reg := newRegistryTestEnv(t, time.Minute)

	if _, err := reg.Announce(ctx, Instance{Service: "vehicle-service"}); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("expected ErrInvalidInstance, got %v", err)
	}
}
