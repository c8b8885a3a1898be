package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hyperlens/internal/domain"
)

// DefaultBroadcastExpiryHours applies when the caller supplies no usable
// expiry.
const DefaultBroadcastExpiryHours = 24

// EventSink pushes real-time events to connected clients. Delivery is
// best-effort; pushing with nobody connected is a no-op.
type EventSink interface {
	BroadcastAll(payload any)
	EmitToRoom(room string, payload any)
}

// BroadcastService orchestrates broadcast creation, proximity queries, and
// real-time emission.
type BroadcastService struct {
	businesses domain.BusinessRepository
	broadcasts domain.BroadcastRepository
	sink       EventSink
}

func NewBroadcastService(businesses domain.BusinessRepository, broadcasts domain.BroadcastRepository, sink EventSink) *BroadcastService {
	return &BroadcastService{
		businesses: businesses,
		broadcasts: broadcasts,
		sink:       sink,
	}
}

type BroadcastCreateInput struct {
	Message        string
	Category       string
	ExpiresInHours int
}

func (s *BroadcastService) Create(ctx context.Context, ownerID string, in BroadcastCreateInput) (*domain.Broadcast, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, fmt.Errorf("broadcast message is required: %w", domain.ErrInvalidInput)
	}
	if len([]rune(message)) > 500 {
		return nil, fmt.Errorf("broadcast message exceeds 500 characters: %w", domain.ErrInvalidInput)
	}
	category := in.Category
	if category == "" {
		category = domain.BroadcastOffer
	}
	if category != domain.BroadcastOffer && category != domain.BroadcastCommunity {
		return nil, fmt.Errorf("unknown broadcast category %q: %w", category, domain.ErrInvalidInput)
	}

	business, err := s.businesses.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business == nil {
		return nil, fmt.Errorf("business not found for this user, register a business first: %w", domain.ErrNotFound)
	}

	hours := in.ExpiresInHours
	if hours <= 0 {
		hours = DefaultBroadcastExpiryHours
	}

	now := time.Now().UTC()
	broadcast := &domain.Broadcast{
		BusinessID: business.ID,
		Message:    message,
		Category:   category,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(hours) * time.Hour),
	}
	if err := s.broadcasts.Create(ctx, broadcast); err != nil {
		return nil, err
	}

	// Global fan-out: every live session receives the event and filters by
	// its own location client-side. The server computes no per-recipient
	// eligibility here; recipients re-query nearby broadcasts themselves.
	s.sink.BroadcastAll(map[string]any{
		"type":             "newBroadcast",
		"broadcast":        broadcast,
		"businessName":     business.ShopName,
		"businessCategory": business.Category,
		"businessLocation": business.Location,
	})

	return broadcast, nil
}

// NearbyActive returns unexpired broadcasts from businesses within 5 km of
// the point, newest first. Expiry is judged against ExpiresAt at query time;
// rows the reaper has not yet removed are still excluded here.
func (s *BroadcastService) NearbyActive(ctx context.Context, lat, lng float64) ([]*domain.Broadcast, error) {
	if !validCoordinates(lat, lng) {
		return nil, fmt.Errorf("coordinates out of range: %w", domain.ErrInvalidInput)
	}

	businesses, err := s.businesses.FindNearby(ctx, lat, lng, NearbyRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("find nearby businesses: %w", err)
	}
	if len(businesses) == 0 {
		return nil, nil
	}
	ids := make([]string, len(businesses))
	for i, b := range businesses {
		ids[i] = b.ID
	}

	return s.broadcasts.ListActiveForBusinesses(ctx, ids, time.Now().UTC())
}

// Mine returns every broadcast of the caller's business, expired ones
// included, newest first.
func (s *BroadcastService) Mine(ctx context.Context, ownerID string) ([]*domain.Broadcast, error) {
	business, err := s.businesses.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business == nil {
		return nil, fmt.Errorf("no business found for this account: %w", domain.ErrNotFound)
	}
	return s.broadcasts.ListForBusiness(ctx, business.ID)
}
