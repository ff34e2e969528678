// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in the envelope's Type field.
const (
	TypeReviewCreated    = "menu.review.created"
	TypeDiscountsCleaned = "menu.discounts.cleaned"
)

// Envelope wraps every message on the menu.events queue so the consumer can
// dispatch on Type before decoding the payload.
type Envelope struct {
	Type string `json:"type"`
}

// ReviewCreatedEvent is published when a customer leaves a review. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ReviewCreatedEvent struct {
	Type         string  `json:"type"`
	ReviewID     uint64  `json:"review_id"`
	MealID       uint64  `json:"meal_id"`
	RestaurantID uint64  `json:"restaurant_id"`
	UserID       uint64  `json:"user_id"`
	UserName     string  `json:"user_name"`
	Rating       int     `json:"rating"`
	MealRating   float64 `json:"meal_rating"`
	CreatedAt    string  `json:"created_at"`
}

// DiscountsCleanedEvent is published after a cleanup pass over a
// restaurant's expired discounts.
type DiscountsCleanedEvent struct {
	Type         string `json:"type"`
	RestaurantID uint64 `json:"restaurant_id"`
	Removed      int64  `json:"removed"`
	CleanedAt    string `json:"cleaned_at"`
}
