package models

import "time"

// Rating bounds for a food review.
const (
	RatingMin = 0
	RatingMax = 20
)

// Body length bounds for a food review.
const (
	ReviewBodyMin = 2
	ReviewBodyMax = 512
)

// FoodReview is one identity's review of one food. The composite unique
// index enforces at most one review per (user, food) pair. Reviews delete
// hard: a soft-deleted row would keep occupying that index and block the
// identity from ever reviewing the food again.
type FoodReview struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_food"`
	FoodID    uint      `json:"food_id" gorm:"not null;uniqueIndex:idx_review_user_food"`
	Body      string    `json:"body" gorm:"type:varchar(512);not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
