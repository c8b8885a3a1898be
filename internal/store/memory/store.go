// Package memory provides in-memory implementations of the domain
// repositories. It backs unit tests and local development where no MongoDB
// instance is available; semantics mirror the mongo store, including the
// inclusive radius boundary of geo queries and per-key unread increments.
package memory

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newID() string {
	return primitive.NewObjectID().Hex()
}

const earthRadiusMeters = 6371000

// distanceMeters computes the great-circle distance between two points using
// the haversine formula.
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
