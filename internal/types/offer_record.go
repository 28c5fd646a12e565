package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OfferRecord persists the durable shadow of an in-memory offer. OfferNo is
// the per-store counter id assigned by the store aggregate.
type OfferRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_offer_store_no,unique;column:store_id" json:"store_id"`
	OfferNo   uint64         `gorm:"not null;index:idx_offer_store_no,unique;column:offer_no" json:"offer_no"`
	BuyerID   uuid.UUID      `gorm:"type:uuid;not null;index;column:buyer_id" json:"buyer_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;column:product_id" json:"product_id"`
	Price     float64        `gorm:"not null;column:price" json:"price"`
	Quantity  int            `gorm:"not null;column:quantity" json:"quantity"`
	Status    string         `gorm:"not null;column:status" json:"status"`
	Approvers datatypes.JSON `gorm:"column:approvers;type:jsonb" json:"approvers"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (OfferRecord) TableName() string { return "offer" }
