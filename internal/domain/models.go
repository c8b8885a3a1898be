package domain

import "time"

// Roles a user account can hold.
const (
	RoleUser     = "user"
	RoleBusiness = "business"
)

// BusinessCategories is the closed set of categories a business may register under.
var BusinessCategories = []string{"Event", "Kirana", "Medical", "Restaurant", "Hardware", "Salon", "Other"}

// Broadcast categories.
const (
	BroadcastOffer     = "Offer"
	BroadcastCommunity = "Community"
)

// User represents an application user (customer or business owner).
type User struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Email          string    `bson:"email" json:"email"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	Role           string    `bson:"role" json:"role"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude] (WGS84).
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a lat/lng pair.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Lng returns the longitude of the point.
func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }

// Lat returns the latitude of the point.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Business represents a registered shop tied to exactly one owner account.
type Business struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"ownerId"`
	ShopName  string    `bson:"shop_name" json:"shopName"`
	Category  string    `bson:"category" json:"category"`
	Address   string    `bson:"address" json:"address"`
	Location  GeoPoint  `bson:"location" json:"location"`
	Verified  bool      `bson:"verified" json:"verified"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Broadcast is a time-limited message from a business. It is active while
// ExpiresAt lies in the future; there is no stored status field.
type Broadcast struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	BusinessID string    `bson:"business_id" json:"businessId"`
	Message    string    `bson:"message" json:"message"`
	Category   string    `bson:"category" json:"category"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expiresAt"`
}

// Active reports whether the broadcast has not yet expired at the given instant.
func (b *Broadcast) Active(now time.Time) bool {
	return b.ExpiresAt.After(now)
}

// LastMessage is the denormalized snapshot of a thread's most recent message.
type LastMessage struct {
	Text      string    `bson:"text" json:"text"`
	SenderID  string    `bson:"sender_id" json:"senderId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ChatThread binds a customer to a business owner. A thread is unique per
// (business, participant pair); UnreadCount maps participant id to the number
// of messages that participant has not yet read.
type ChatThread struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	Participants []string       `bson:"participants" json:"participants"`
	BusinessID   string         `bson:"business_id" json:"businessId"`
	LastMessage  LastMessage    `bson:"last_message" json:"lastMessage"`
	UnreadCount  map[string]int `bson:"unread_count" json:"unreadCount"`
	CreatedAt    time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updatedAt"`
}

// HasParticipant reports whether the given user belongs to the thread.
func (t *ChatThread) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a single chat message. Immutable once created; removed only as a
// cascade of thread deletion.
type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ChatID    string    `bson:"chat_id" json:"chatId"`
	SenderID  string    `bson:"sender_id" json:"senderId"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
