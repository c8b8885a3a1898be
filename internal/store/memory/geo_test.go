package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hyperlens/internal/domain"
)

func TestDistanceMeters(t *testing.T) {
	// Connaught Place to a point ~150 m away.
	d := distanceMeters(28.6139, 77.2090, 28.6150, 77.2100)
	assert.InDelta(t, 155, d, 15)

	// Same point is zero.
	assert.Zero(t, distanceMeters(28.6139, 77.2090, 28.6139, 77.2090))
}

// A business sitting exactly at the radius is included: the comparison is
// d <= radius, matching the inclusive $maxDistance of the mongo store.
func TestFindNearbyExactBoundaryInclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewBusinessRepo()

	const lat, lng = 28.0, 77.0
	const bizLat, bizLng = 28.02, 77.0
	b := &domain.Business{
		OwnerID:   "edge-owner",
		ShopName:  "Edge Shop",
		Category:  "Other",
		Address:   "on the line",
		Location:  domain.NewGeoPoint(bizLat, bizLng),
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, repo.Create(ctx, b))

	exact := distanceMeters(lat, lng, bizLat, bizLng)

	got, err := repo.FindNearby(ctx, lat, lng, exact)
	assert.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repo.FindNearby(ctx, lat, lng, exact-0.001)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
