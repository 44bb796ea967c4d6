package models

import "time"

// CostCenter is an organizational bucket spend is tracked against.
// Deletion is forbidden while any Budget or Transaction references it.
type CostCenter struct {
	Id          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:50;unique;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
