package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoreID        uuid.UUID `gorm:"type:uuid;not null;index;column:store_id" json:"store_id"`
	Store          *Store    `gorm:"constraint:OnDelete:CASCADE;foreignKey:StoreID;references:ID" json:"-"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	Description    string    `gorm:"column:description" json:"description"`
	Category       string    `gorm:"not null;index;column:category" json:"category"`
	Price          float64   `gorm:"not null;column:price" json:"price"`
	Stock          int       `gorm:"not null;default:0;column:stock" json:"stock"`
	ImageBucketKey string    `gorm:"column:image_bucket_key" json:"image_bucket_key"`
	ImageURL       string    `gorm:"column:image_url" json:"image_url"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }
