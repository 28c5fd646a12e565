package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContractRecord persists the durable shadow of an in-memory owner
// appointment contract.
type ContractRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_contract_store_no,unique;column:store_id" json:"store_id"`
	ContractNo  uint64         `gorm:"not null;index:idx_contract_store_no,unique;column:contract_no" json:"contract_no"`
	AssignedBy  uuid.UUID      `gorm:"type:uuid;not null;column:assigned_by" json:"assigned_by"`
	CandidateID uuid.UUID      `gorm:"type:uuid;not null;index;column:candidate_id" json:"candidate_id"`
	Terms       string         `gorm:"column:terms" json:"terms"`
	Status      string         `gorm:"not null;column:status" json:"status"`
	Approvers   datatypes.JSON `gorm:"column:approvers;type:jsonb" json:"approvers"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContractRecord) TableName() string { return "owner_contract" }
