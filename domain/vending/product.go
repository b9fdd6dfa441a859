// Package vending holds the core entities of the vending machine domain:
// products, categories, users and their purchases. All types here are plain
// data owned by the external store; the application layer never mutates them.
package vending

// Product is a sellable item. Read-only reference data resolved from the
// store; ImageURL and Brand are optional and only used for display cards.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Emotion     Emotion
	CategoryIDs []int64
	ImageURL    string
	Brand       string
}

// Category groups products for browsing ("drink", "snack", ...).
type Category struct {
	ID   int64
	Name string
}

// CategoryDrink is the category that switches the purchase farewell
// from "Bon appetit" to "Cheers".
const CategoryDrink = "drink"

// User is a known customer resolved by name from the face profile.
type User struct {
	ID   int64
	Name string
}
