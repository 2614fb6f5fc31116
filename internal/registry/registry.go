// Package registry maintains the cached mapping from provider id to client
// factory and resolves composite model ids at request time.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kasuboski/openai-gateway/internal/aigateway"
	"github.com/kasuboski/openai-gateway/internal/configstore"
	"github.com/kasuboski/openai-gateway/internal/provider"
	"github.com/kasuboski/openai-gateway/internal/secrets"
)

// snapshot is an immutable point-in-time factory set. It is built complete,
// published once through the atomic pointer, and never mutated afterwards.
type snapshot struct {
	factories map[string]provider.ClientFactory
	builtAt   time.Time
}

// Registry owns the current snapshot and its freshness policy.
//
// The current-snapshot pointer is the only mutable shared cell: readers load
// it without locking and a successful refresh swaps in a whole new snapshot.
// Cold-start refreshes are coalesced so concurrent first requests trigger a
// single configuration read; once a snapshot exists, a stale-triggered
// refresh is won by at most one caller while everyone else proceeds on the
// stale snapshot rather than blocking.
type Registry struct {
	store     configstore.Store
	secrets   secrets.Source
	endpoints aigateway.Resolver
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time

	current    atomic.Pointer[snapshot]
	refreshing atomic.Bool
	cold       singleflight.Group
}

// Option adjusts registry construction.
type Option func(*Registry)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func New(store configstore.Store, sec secrets.Source, endpoints aigateway.Resolver, ttl time.Duration, logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		secrets:   sec,
		endpoints: endpoints,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SplitModelID splits a composite `<provider>/<model>` id on the first slash.
// The model name may itself contain slashes.
func SplitModelID(compositeID string) (providerID, model string, err error) {
	providerID, model, found := strings.Cut(compositeID, "/")
	if !found || providerID == "" || model == "" {
		return "", "", fmt.Errorf("%w: %q", provider.ErrMalformedModelID, compositeID)
	}
	return providerID, model, nil
}

// Resolve returns an invocable client for a composite model id, refreshing
// the snapshot first if it has expired.
func (r *Registry) Resolve(ctx context.Context, compositeID string) (provider.Client, error) {
	providerID, model, err := SplitModelID(compositeID)
	if err != nil {
		return nil, err
	}

	if err := r.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	snap := r.current.Load()
	factory, ok := snap.factories[providerID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", provider.ErrProviderNotFound, providerID)
	}

	return factory(model), nil
}

// Providers lists the provider ids of the current snapshot, sorted.
func (r *Registry) Providers(ctx context.Context) ([]string, error) {
	if err := r.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	snap := r.current.Load()
	ids := make([]string, 0, len(snap.factories))
	for id := range snap.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// EnsureFresh refreshes the snapshot when its age has reached the TTL. With a
// fresh snapshot it is a no-op. It returns an error only when no snapshot
// exists at all and the initial load fails; once a snapshot is in place a
// failed refresh keeps the prior snapshot in force.
func (r *Registry) EnsureFresh(ctx context.Context) error {
	snap := r.current.Load()
	if snap == nil {
		_, err, _ := r.cold.Do("refresh", func() (interface{}, error) {
			if r.current.Load() != nil {
				return nil, nil
			}
			return nil, r.refresh(ctx)
		})
		return err
	}

	if r.now().Sub(snap.builtAt) < r.ttl {
		return nil
	}

	if r.refreshing.CompareAndSwap(false, true) {
		defer r.refreshing.Store(false)
		if err := r.refresh(ctx); err != nil {
			r.logger.Error("provider refresh failed, serving stale snapshot", zap.Error(err))
		}
	}

	return nil
}

// refresh rebuilds the factory set from the configuration store and swaps it
// in. A bad entry is logged and skipped; only an unreachable store aborts the
// refresh as a whole.
func (r *Registry) refresh(ctx context.Context) error {
	ids, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list provider config: %w", err)
	}

	factories := make(map[string]provider.ClientFactory, len(ids))

	for _, id := range ids {
		raw, ok, err := r.store.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("read provider config: %w", err)
		}
		if !ok {
			// deleted between list and get
			r.logger.Debug("provider entry vanished during refresh", zap.String("provider", id))
			continue
		}

		desc, err := provider.ParseDescriptor(id, raw)
		if err != nil {
			r.logger.Warn("skipping provider: bad descriptor", zap.String("provider", id), zap.Error(err))
			continue
		}

		secret, ok := r.secrets.Get(desc.SecretName)
		if !ok {
			r.logger.Warn("skipping provider: secret not bound",
				zap.String("provider", id),
				zap.String("secret_name", desc.SecretName),
				zap.Error(fmt.Errorf("%w: %q", provider.ErrSecretMissing, desc.SecretName)))
			continue
		}

		endpoint, err := r.endpoints.Resolve(desc.RoutingPath)
		if err != nil {
			r.logger.Warn("skipping provider: endpoint resolution failed", zap.String("provider", id), zap.Error(err))
			continue
		}

		factory, err := provider.BuildFactory(desc, secret, endpoint)
		if err != nil {
			r.logger.Warn("skipping provider: no factory", zap.String("provider", id), zap.Error(err))
			continue
		}

		if _, dup := factories[id]; dup {
			// listing order is not guaranteed, last write wins
			r.logger.Warn("duplicate provider id in configuration", zap.String("provider", id))
		}
		factories[id] = factory
	}

	r.current.Store(&snapshot{
		factories: factories,
		builtAt:   r.now(),
	})

	r.logger.Info("provider snapshot refreshed", zap.Int("providers", len(factories)))
	return nil
}
