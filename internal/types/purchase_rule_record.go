package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PurchaseRuleRecord persists one top-level purchase rule as JSON.
type PurchaseRuleRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_rule_store_no,unique;column:store_id" json:"store_id"`
	RuleNo    uint64         `gorm:"not null;index:idx_rule_store_no,unique;column:rule_no" json:"rule_no"`
	Rule      datatypes.JSON `gorm:"not null;column:rule;type:jsonb" json:"rule"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PurchaseRuleRecord) TableName() string { return "purchase_rule" }
