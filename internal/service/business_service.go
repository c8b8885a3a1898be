package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hyperlens/internal/domain"
)

// NearbyRadiusMeters is the fixed radius for all proximity queries.
const NearbyRadiusMeters = 5000

// BusinessService handles business registration and geospatial lookup.
type BusinessService struct {
	businesses domain.BusinessRepository
}

func NewBusinessService(businesses domain.BusinessRepository) *BusinessService {
	return &BusinessService{businesses: businesses}
}

type BusinessRegisterInput struct {
	ShopName string
	Category string
	Address  string
	Lat      float64
	Lng      float64
}

func (s *BusinessService) Register(ctx context.Context, ownerID string, in BusinessRegisterInput) (*domain.Business, error) {
	in.ShopName = strings.TrimSpace(in.ShopName)
	if in.ShopName == "" || in.Category == "" || strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("shopName, category and address are required: %w", domain.ErrInvalidInput)
	}
	if !validCategory(in.Category) {
		return nil, fmt.Errorf("unknown business category %q: %w", in.Category, domain.ErrInvalidInput)
	}
	if !validCoordinates(in.Lat, in.Lng) {
		return nil, fmt.Errorf("coordinates out of range: %w", domain.ErrInvalidInput)
	}

	if existing, err := s.businesses.GetByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("check owner: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("business already registered for this account: %w", domain.ErrConflict)
	}

	now := time.Now().UTC()
	business := &domain.Business{
		OwnerID:   ownerID,
		ShopName:  in.ShopName,
		Category:  in.Category,
		Address:   strings.TrimSpace(in.Address),
		Location:  domain.NewGeoPoint(in.Lat, in.Lng),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.businesses.Create(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

// Nearby returns businesses within the fixed 5 km radius of the point.
func (s *BusinessService) Nearby(ctx context.Context, lat, lng float64) ([]*domain.Business, error) {
	if !validCoordinates(lat, lng) {
		return nil, fmt.Errorf("coordinates out of range: %w", domain.ErrInvalidInput)
	}
	return s.businesses.FindNearby(ctx, lat, lng, NearbyRadiusMeters)
}

func (s *BusinessService) Mine(ctx context.Context, ownerID string) (*domain.Business, error) {
	business, err := s.businesses.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business == nil {
		return nil, fmt.Errorf("no business found for this account: %w", domain.ErrNotFound)
	}
	return business, nil
}

func validCategory(category string) bool {
	for _, c := range domain.BusinessCategories {
		if c == category {
			return true
		}
	}
	return false
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
