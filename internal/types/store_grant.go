package types

import (
	"time"

	"github.com/google/uuid"
)

// StoreGrant persists one role assignment, mirroring the in-memory
// permission.Grant. Capabilities holds the raw bitset.
type StoreGrant struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID      uuid.UUID `gorm:"type:uuid;not null;index:idx_grant_store_user,unique;column:store_id" json:"store_id"`
	Store        *Store    `gorm:"constraint:OnDelete:CASCADE;foreignKey:StoreID;references:ID" json:"-"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_grant_store_user,unique;column:user_id" json:"user_id"`
	GrantedBy    uuid.UUID `gorm:"type:uuid;column:granted_by" json:"granted_by"`
	Role         string    `gorm:"not null;column:role" json:"role"`
	Capabilities uint32    `gorm:"not null;column:capabilities" json:"capabilities"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StoreGrant) TableName() string { return "store_grant" }
