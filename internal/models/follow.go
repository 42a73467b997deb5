package models

import "time"

// Follow is a directed edge in the follower graph: FollowerID follows
// FolloweeID. The composite unique index makes re-following a no-op at the
// store level; self-edges are rejected before any write. Edges delete hard:
// a soft-deleted row would keep occupying the unique index and block
// re-following.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	FolloweeID uint      `json:"followee_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	CreatedAt  time.Time `json:"created_at"`
}
