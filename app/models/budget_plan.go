package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrPlanDatesInverted = errors.New("plan end date precedes start date")
)

// BudgetPlan is a funding period for a client. TotalAvailable is the
// approved funding amount the plan's line items are allocated against.
// Title and the validity dates are optional; an undated plan never
// counts as expired or expiring. At most one plan per client is active
// at a time.
type BudgetPlan struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UUID           string           `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	ClientID       uint             `gorm:"index;not null" json:"client_id"`
	Client         Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Title          string           `gorm:"type:varchar(255);default:null" json:"title" validate:"max=255"`
	TotalAvailable decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"total_available"`
	StartDate      *time.Time       `gorm:"type:date;default:null" json:"start_date"`
	EndDate        *time.Time       `gorm:"type:date;default:null" json:"end_date"`
	IsActive       bool             `gorm:"default:false;index" json:"is_active"`
	ViewCount      int              `gorm:"default:0" json:"view_count"`
	LineItems      []BudgetLineItem `gorm:"foreignKey:PlanID" json:"line_items,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public UUID on first insert.
func (p *BudgetPlan) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

func (p *BudgetPlan) Validate() error {
	v := validator.New()

	if err := v.Struct(p); err != nil {
		return err
	}
	if p.TotalAvailable.IsNegative() {
		return ErrNegativeAmount
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrPlanDatesInverted
	}
	return nil
}

// AllocatedTotal sums the line totals of the loaded line items.
// Callers must preload LineItems first.
func (p *BudgetPlan) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.LineItems {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Remaining is the unallocated part of the plan. Negative when the
// line items exceed the available funding.
func (p *BudgetPlan) Remaining() decimal.Decimal {
	return p.TotalAvailable.Sub(p.AllocatedTotal())
}

// IsExpired reports whether the plan's funding period has ended. Plans
// without an end date never expire.
func (p *BudgetPlan) IsExpired(now time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	return p.EndDate.Before(now.Truncate(24 * time.Hour))
}

// ExpiresWithin reports whether the plan ends inside the given window
// from now. Already expired and undated plans are not counted.
func (p *BudgetPlan) ExpiresWithin(now time.Time, window time.Duration) bool {
	if p.EndDate == nil || p.IsExpired(now) {
		return false
	}
	return p.EndDate.Before(now.Add(window))
}

// IncrementViewCount bumps the plan view counter.
func (p *BudgetPlan) IncrementViewCount(db *gorm.DB) error {
	return db.Model(p).Update("view_count", p.ViewCount+1).Error
}
