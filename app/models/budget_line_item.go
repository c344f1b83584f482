package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetLineItem is a planned service allocation inside a budget plan:
// a support item booked for a number of sessions at a unit price.
// UsedQuantity tracks delivered sessions and caps how far Quantity may
// be reduced.
type BudgetLineItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PlanID        uint            `gorm:"index;not null" json:"plan_id"`
	Plan          BudgetPlan      `gorm:"foreignKey:PlanID" json:"-"`
	CatalogItemID *uint           `gorm:"index;default:null" json:"catalog_item_id,omitempty"`
	Code          string          `gorm:"type:varchar(30);not null;index" json:"code" validate:"required,max=30"`
	Description   string          `gorm:"type:varchar(255);not null" json:"description" validate:"required,min=3,max=255"`
	Category      string          `gorm:"type:varchar(50);default:'core'" json:"category" validate:"oneof=core capacity_building capital"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity" validate:"gte=0"`
	UsedQuantity  int             `gorm:"not null;default:0" json:"used_quantity" validate:"gte=0,ltefield=Quantity"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (li *BudgetLineItem) Validate() error {
	v := validator.New()

	if err := v.Struct(li); err != nil {
		return err
	}
	if li.UnitPrice.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// LineTotal is the planned cost of the line: unit price times quantity.
func (li *BudgetLineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// BalanceQuantity is the number of undelivered units left on the line.
func (li *BudgetLineItem) BalanceQuantity() int {
	return li.Quantity - li.UsedQuantity
}

// CanReduceQuantityTo reports whether the quantity may be lowered to n
// without cutting into already delivered sessions.
func (li *BudgetLineItem) CanReduceQuantityTo(n int) bool {
	return n >= li.UsedQuantity
}
