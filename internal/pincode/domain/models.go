package domain

import "time"

// Record maps a postal code to its city, state, and region.
type Record struct {
	Pincode   string    `gorm:"primaryKey;type:text"`
	City      string    `gorm:"type:text;not null"`
	State     string    `gorm:"type:text;not null"`
	Region    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "pincodes" }
