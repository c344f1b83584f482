package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Support categories from the NDIS price guide.
const (
	CategoryCore             = "core"
	CategoryCapacityBuilding = "capacity_building"
	CategoryCapital          = "capital"
)

// Billing units a catalog item can be priced in.
const (
	UnitHour = "hour"
	UnitEach = "each"
	UnitWeek = "week"
)

// CatalogItem is a support item from the price guide. Line items may
// reference a catalog item to inherit its code and price cap.
type CatalogItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"code" validate:"required,max=30"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=3,max=255"`
	Category  string          `gorm:"type:varchar(50);not null;index" json:"category" validate:"oneof=core capacity_building capital"`
	Unit      string          `gorm:"type:varchar(20);default:'hour'" json:"unit" validate:"oneof=hour each week"`
	PriceCap  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_cap"`
	IsActive  bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (ci *CatalogItem) Validate() error {
	v := validator.New()

	if err := v.Struct(ci); err != nil {
		return err
	}
	if ci.PriceCap.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ExceedsPriceCap reports whether a proposed unit price is above the
// catalog cap for this item.
func (ci *CatalogItem) ExceedsPriceCap(unitPrice decimal.Decimal) bool {
	return ci.PriceCap.IsPositive() && unitPrice.GreaterThan(ci.PriceCap)
}
