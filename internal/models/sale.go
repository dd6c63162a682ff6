package models

import "time"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Sale is immutable once committed: the row, its items and the matching
// stock decrements are written in a single transaction.
type Sale struct {
	ID            uint          `gorm:"primaryKey"`
	ReceiptNo     string        `gorm:"size:36;uniqueIndex;not null"`
	UserID        uint          `gorm:"index;not null"`
	User          User
	TotalAmount   float64       `gorm:"not null"` // always recomputed server-side
	PaymentMethod PaymentMethod `gorm:"size:10;not null"`
	Items         []SaleItem    `gorm:"foreignKey:SaleID"`
	CreatedAt     time.Time     `gorm:"index"`
}

type SaleItem struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	// ProductName is a deliberate snapshot taken at cart-add time so that
	// historical sales keep the name the operator saw, even after the
	// catalog entry is renamed or deleted.
	ProductName string  `gorm:"size:100;not null"`
	Quantity    int     `gorm:"not null"`
	UnitPrice   float64 `gorm:"not null"` // price snapshot, decoupled from later edits
}

// Total is the derived line total.
func (i SaleItem) Total() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
