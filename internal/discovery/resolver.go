package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Resolver returns the base URL to use for the next call to a service.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// StaticResolver always resolves to a fixed URL.
type StaticResolver string

// Resolve returns the configured URL.
func (s StaticResolver) Resolve(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoInstances
	}
	return strings.TrimSuffix(string(s), "/"), nil
}

// instanceLister is the part of Registry used for resolution.
type instanceLister interface {
	Instances(ctx context.Context, service string) ([]Instance, error)
}

// RoundRobinResolver spreads calls across the live instances of a service.
type RoundRobinResolver struct {
	lister  instanceLister
	service string
	next    atomic.Uint64
}

// Resolver returns a round-robin resolver for service.
func (r *Registry) Resolver(service string) *RoundRobinResolver {
	return &RoundRobinResolver{lister: r, service: service}
}

// Resolve picks the next live instance.
func (rr *RoundRobinResolver) Resolve(ctx context.Context) (string, error) {
	instances, err := rr.lister.Instances(ctx, rr.service)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rr.service, err)
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("resolve %s: %w", rr.service, ErrNoInstances)
	}

	n := rr.next.Add(1) - 1
	return instances[n%uint64(len(instances))].URL, nil
}
