package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	Id          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Sku         string          `json:"sku" gorm:"size:50;unique"`
	Category    string          `json:"category" gorm:"size:100"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
