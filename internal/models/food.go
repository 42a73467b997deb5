package models

import "time"

// Food is a dish on a restaurant's menu. Its name is unique within the
// owning restaurant, not globally; deletes are hard so the name can be
// reused afterwards.
//
// AverageRating is derived state: the mean of all review ratings for this
// food, recomputed from the live review set on every rating-affecting write.
// Zero reviews means an average of 0.
type Food struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_food_name_restaurant"`
	RestaurantID  uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_food_name_restaurant"`
	Description   string    `json:"description" gorm:"type:varchar(512)"`
	PhotoPath     string    `json:"photo_path"`
	PhotoRemoteID string    `json:"-"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}
