package models

import "time"

type Product struct {
	ID        uint    `gorm:"primaryKey"`
	Barcode   *string `gorm:"size:50;uniqueIndex"` // optional, unique when present
	Name      string  `gorm:"size:100;not null"`
	Price     float64 `gorm:"not null"`
	Quantity  int     `gorm:"not null"` // never negative, enforced by conditional updates
	CreatedAt time.Time
	UpdatedAt time.Time
}
