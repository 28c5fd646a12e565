package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DiscountRecord persists one top-level discount tree as JSON. DiscountNo is
// the per-store counter id assigned by the store aggregate.
type DiscountRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_discount_store_no,unique;column:store_id" json:"store_id"`
	DiscountNo uint64         `gorm:"not null;index:idx_discount_store_no,unique;column:discount_no" json:"discount_no"`
	Tree       datatypes.JSON `gorm:"not null;column:tree;type:jsonb" json:"tree"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (DiscountRecord) TableName() string { return "discount" }
