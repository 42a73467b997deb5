package models

import "time"

// ReviewLike marks that one identity liked one review. Uniqueness of the
// (user, review) pair is enforced by the composite index; the service layer
// translates a violation into a conflict rather than pre-checking atomically.
// Likes delete hard for the same reason follow edges do: a soft-deleted row
// would block a later re-like.
type ReviewLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_review"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_like_user_review"`
	CreatedAt time.Time `json:"created_at"`
}
