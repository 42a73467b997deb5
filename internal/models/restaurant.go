package models

import "time"

// Restaurant owns zero or more foods. Deleting a restaurant cascades to
// them. Deletes are hard; a soft-deleted row would keep the unique name
// occupied forever.
type Restaurant struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	ShortName     string    `json:"short_name" gorm:"type:varchar(30)"`
	Description   string    `json:"description" gorm:"type:varchar(512)"`
	PhotoPath     string    `json:"photo_path"`
	PhotoRemoteID string    `json:"-"`
	Foods         []Food    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}
