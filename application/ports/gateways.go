// Package ports defines the interfaces the application layer depends on.
// Infrastructure adapters implement them; application code never imports
// infrastructure directly.
package ports

import (
	"context"
	"time"

	"vending-backend/domain/vending"
)

// Store is the gateway to the product, user and order data.
// Lookup methods return (nil, nil) when no row matches; an error always
// means the store itself misbehaved, never a plain miss.
type Store interface {
	// ProductByName resolves a product by case-insensitive name match.
	ProductByName(ctx context.Context, name string) (*vending.Product, error)

	// ProductByID resolves a product by its identifier.
	ProductByID(ctx context.Context, id int64) (*vending.Product, error)

	// UserByName resolves a user by case-insensitive name match.
	UserByName(ctx context.Context, name string) (*vending.User, error)

	// OrdersSince lists the purchases of a user newer than the given instant.
	OrdersSince(ctx context.Context, userID int64, since time.Time) ([]vending.PurchaseEvent, error)

	// ProductsByCategory lists all products in the named category.
	ProductsByCategory(ctx context.Context, category string) ([]vending.Product, error)

	// ProductsByCategoryAndEmotion lists products in the named category
	// tagged with the given emotion.
	ProductsByCategoryAndEmotion(ctx context.Context, category string, emotion vending.Emotion) ([]vending.Product, error)

	// CategoriesOfProduct lists the categories a product belongs to.
	CategoriesOfProduct(ctx context.Context, productID int64) ([]vending.Category, error)

	// RecordOrder persists a confirmed purchase. A zero userID records an
	// anonymous cash purchase.
	RecordOrder(ctx context.Context, productID, userID int64) error
}

// ProfileConfig is the payload sent to the face server to change its mode.
type ProfileConfig struct {
	// TrainProfile is the name to enroll; the server starts capturing a
	// face profile for it.
	TrainProfile string `json:"trainProfile"`
}

// FaceGateway is the gateway to the external face and emotion detection
// server. All calls are bounded by the context deadline and surface
// unreachability as a service-unavailable error.
type FaceGateway interface {
	// DetectEmotion returns the dominant expression currently seen by the
	// camera, or vending.EmotionUndefined when nothing is detected.
	DetectEmotion(ctx context.Context) (vending.Emotion, error)

	// DetectUserName returns the name of the recognized person, or an empty
	// string when nobody is recognized.
	DetectUserName(ctx context.Context) (string, error)

	// SetProfileMode reconfigures the face server, e.g. to start profile
	// training. Returns whether the server acknowledged the change.
	SetProfileMode(ctx context.Context, cfg ProfileConfig) (bool, error)
}
