package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	FounderID   uuid.UUID `gorm:"type:uuid;not null;index;column:founder_id" json:"founder_id"`
	Founder     *User     `gorm:"foreignKey:FounderID;references:ID" json:"-"`
	Active      bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Store) TableName() string { return "store" }
