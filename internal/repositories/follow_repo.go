package repositories

import "tastebud/internal/models"

// FollowRepository defines the interface for follow-graph data access.
// Insert and Delete are idempotent: inserting an existing edge or deleting a
// missing one succeeds without effect.
type FollowRepository interface {
	Insert(followerID, followeeID uint) error
	Delete(followerID, followeeID uint) error
	Exists(followerID, followeeID uint) (bool, error)
	Followers(userID uint) ([]models.User, error)
	Following(userID uint) ([]models.User, error)
	CountFollowers(userID uint) (int64, error)
	CountFollowing(userID uint) (int64, error)
}
