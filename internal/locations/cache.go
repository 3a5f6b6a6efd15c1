package locations

import (
	"context"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
)

// CachedRepository fronts a Repository with an in-process LRU. The tree is
// read-mostly: every property form and search filter lists the same handful
// of branches, while writes happen a few times a year.
type CachedRepository struct {
	inner Repository
	cache *ccache.Cache[[]*Location]
}

func NewCachedRepository(inner Repository) *CachedRepository {
	return &CachedRepository{
		inner: inner,
		cache: ccache.New(ccache.Configure[[]*Location]().MaxSize(1000)),
	}
}

// Create writes through and drops the affected listings.
func (r *CachedRepository) Create(ctx context.Context, req *CreateRequest) (*Location, error) {
	loc, err := r.inner.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if loc.ParentID != nil {
		r.cache.Delete("children:" + loc.ParentID.String())
	}
	r.cache.Delete("level:" + string(loc.Level))
	return loc, nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Location, error) {
	key := "children:" + parentID.String()
	if item := r.cache.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	out, err := r.inner.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, out, cacheTTL)
	return out, nil
}

func (r *CachedRepository) ListByLevel(ctx context.Context, level Level) ([]*Location, error) {
	key := "level:" + string(level)
	if item := r.cache.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	out, err := r.inner.ListByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, out, cacheTTL)
	return out, nil
}

var _ Repository = (*CachedRepository)(nil)
