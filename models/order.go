package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is a persisted record of a completed checkout. Immutable once
// created except for Status, which only checkout itself transitions.
type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Ref         string      `gorm:"uniqueIndex;not null" json:"ref"`
	CartID      uint        `gorm:"index;not null" json:"cart_id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	Status      OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderLine snapshots a cart line at checkout time, so the order stays
// reconstructable after the cart's items are deleted.
type OrderLine struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}
