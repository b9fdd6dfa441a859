package vending

import "time"

// PurchaseEvent records one confirmed purchase. Immutable once written;
// UserID is zero for anonymous cash purchases, and recommendation scoring
// must skip such events entirely.
type PurchaseEvent struct {
	ProductID int64
	UserID    int64
	Timestamp time.Time
}

// Anonymous reports whether the purchase has no user attached.
func (e PurchaseEvent) Anonymous() bool {
	return e.UserID == 0
}
