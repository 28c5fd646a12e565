package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Order struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	StoreID      uuid.UUID      `gorm:"type:uuid;not null;index;column:store_id" json:"store_id"`
	RegularPrice float64        `gorm:"not null;column:regular_price" json:"regular_price"`
	Reduction    float64        `gorm:"not null;column:reduction" json:"reduction"`
	FinalPrice   float64        `gorm:"not null;column:final_price" json:"final_price"`
	PaymentRef   string         `gorm:"column:payment_ref" json:"payment_ref"`
	SupplyRef    string         `gorm:"column:supply_ref" json:"supply_ref"`
	Lines        datatypes.JSON `gorm:"column:lines;type:jsonb" json:"lines"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Order) TableName() string { return "store_order" }
