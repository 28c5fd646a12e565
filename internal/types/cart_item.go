package types

import (
	"time"

	"github.com/google/uuid"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_user_product,unique;column:user_id" json:"user_id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index;column:store_id" json:"store_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_cart_user_product,unique;column:product_id" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;column:quantity" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_item" }
