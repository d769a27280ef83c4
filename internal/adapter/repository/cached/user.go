package cached

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-admin-service/internal/adapter/cache"
	domain "user-admin-service/internal/domain/user"
	"user-admin-service/internal/usecase/user"
	"user-admin-service/pkg/metrics"
)

// UserRepository implements user.Repository with cache-aside reads over
// another Repository. Cache failures degrade to store reads; every successful
// mutation drops the snapshot and the touched user.
//
// Each mutation bumps a generation. A read only fills the cache if no mutation
// happened since it started reading the store, and reads only share a flight
// with reads of the same generation.
type UserRepository struct {
	store user.Repository
	cache cache.UserCache
	prom  *metrics.Prom
	log   *zap.Logger
	group singleflight.Group

	mu  sync.Mutex // orders cache fills against invalidations
	gen uint64
}

// NewUserRepository wraps store with cache. prom may be nil.
func NewUserRepository(store user.Repository, c cache.UserCache, prom *metrics.Prom, log *zap.Logger) *UserRepository {
	return &UserRepository{
		store: store,
		cache: c,
		prom:  prom,
		log:   log,
	}
}

// ListAll returns the cached snapshot or loads it once for all concurrent callers.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	if users, ok := r.cachedSnapshot(ctx); ok {
		return users, nil
	}

	gen := r.generation()
	result, err, _ := r.group.Do(flightKey(cache.SnapshotKey, gen), func() (any, error) {
		// another flight may have filled it while we waited
		if users, err := r.cache.GetAll(ctx); err == nil && users != nil {
			return users, nil
		}

		users, err := r.store.ListAll(ctx)
		if err != nil {
			return nil, err
		}

		r.fill(gen, func() error { return r.cache.SetAll(ctx, users) }, zap.String("key", cache.SnapshotKey))
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	// the flight result is shared between callers
	return clone(result.([]domain.User)), nil
}

func (r *UserRepository) cachedSnapshot(ctx context.Context) ([]domain.User, bool) {
	users, err := r.cache.GetAll(ctx)
	switch {
	case err != nil:
		r.prom.ObserveCache("snapshot", metrics.CacheError)
		r.log.Warn("cache get error, falling back to store", zap.Error(err))
		return nil, false
	case users == nil:
		r.prom.ObserveCache("snapshot", metrics.CacheMiss)
		return nil, false
	}
	r.prom.ObserveCache("snapshot", metrics.CacheHit)
	return users, true
}

// GetByID retrieves a user by ID using the cache-aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	switch {
	case err != nil:
		r.prom.ObserveCache("user", metrics.CacheError)
		r.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
	case cachedUser != nil:
		r.prom.ObserveCache("user", metrics.CacheHit)
		return cachedUser, nil
	default:
		r.prom.ObserveCache("user", metrics.CacheMiss)
	}

	gen := r.generation()
	result, err, _ := r.group.Do(flightKey(fmt.Sprintf("user:%d", id), gen), func() (any, error) {
		u, err := r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		r.fill(gen, func() error { return r.cache.Set(ctx, u) }, zap.Int64("id", id))
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := *result.(*domain.User)
	return &u, nil
}

// Create stores the user and drops the snapshot.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.store.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return created, nil
}

// Update updates the user in the store and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	updated, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

// Delete deletes the user from the store and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *UserRepository) invalidate(ctx context.Context, ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	if err := r.cache.Invalidate(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate cache after mutation", zap.Int64s("ids", ids), zap.Error(err))
	}
}

func (r *UserRepository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// fill runs set unless a mutation has happened since gen was taken, in which
// case the value read from the store may already be stale.
func (r *UserRepository) fill(gen uint64, set func() error, field zap.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		r.log.Debug("skipping cache fill after concurrent mutation", field)
		return
	}
	if err := set(); err != nil {
		r.log.Warn("failed to fill cache", field, zap.Error(err))
	}
}

func flightKey(key string, gen uint64) string {
	return fmt.Sprintf("%s@%d", key, gen)
}

func clone(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	copy(out, users)
	return out
}
