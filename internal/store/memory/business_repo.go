package memory

import (
	"context"
	"sort"
	"sync"

	"hyperlens/internal/domain"
)

type BusinessRepo struct {
	mu         sync.RWMutex
	businesses map[string]*domain.Business
}

func NewBusinessRepo() *BusinessRepo {
	return &BusinessRepo{businesses: make(map[string]*domain.Business)}
}

var _ domain.BusinessRepository = (*BusinessRepo)(nil)

func (r *BusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.businesses {
		if existing.OwnerID == b.OwnerID {
			return domain.ErrConflict
		}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	cp := *b
	r.businesses[b.ID] = &cp
	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.businesses[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *BusinessRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.businesses {
		if b.OwnerID == ownerID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

// FindNearby returns businesses within radiusMeters of the point, nearest
// first. The boundary is inclusive, matching $maxDistance semantics.
func (r *BusinessRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type hit struct {
		business *domain.Business
		distance float64
	}
	var hits []hit
	for _, b := range r.businesses {
		d := distanceMeters(lat, lng, b.Location.Lat(), b.Location.Lng())
		if d <= radiusMeters {
			cp := *b
			hits = append(hits, hit{business: &cp, distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	result := make([]*domain.Business, len(hits))
	for i, h := range hits {
		result[i] = h.business
	}
	return result, nil
}
