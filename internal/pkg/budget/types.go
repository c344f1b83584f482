package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/allocation"
)

// DeleteConfirmText is the literal a caller must send to delete a line item.
const DeleteConfirmText = "delete"

var (
	ErrInvalidChange        = errors.New("invalid change")
	ErrLineNotInPlan        = errors.New("line item does not belong to the plan")
	ErrConfirmTextMismatch  = errors.New("confirmation text must be \"delete\"")
	ErrConfirmTokenMismatch = errors.New("confirmation token does not match this change")
	ErrStaleConfirmation    = errors.New("plan changed since the confirmation was issued")
	ErrUsageExceedsQuantity = errors.New("recorded usage would exceed the booked quantity")
	ErrPriceAboveCap        = errors.New("unit price exceeds the catalog price cap")
)

// ChangeAction names the staged line item operations.
type ChangeAction string

const (
	ActionAdd    ChangeAction = "add"
	ActionUpdate ChangeAction = "update"
	ActionRemove ChangeAction = "remove"
)

// ChangeInput is one staged edit to a plan's line items. Add carries the
// full draft; update carries the new quantity; remove only the line ID.
type ChangeInput struct {
	Action        ChangeAction    `json:"action" validate:"required,oneof=add update remove"`
	LineItemID    uint            `json:"line_item_id,omitempty"`
	CatalogItemID *uint           `json:"catalog_item_id,omitempty"`
	Code          string          `json:"code,omitempty" validate:"max=30"`
	Description   string          `json:"description,omitempty" validate:"max=255"`
	Category      string          `json:"category,omitempty" validate:"omitempty,oneof=core capacity_building capital"`
	UnitPrice     decimal.Decimal `json:"unit_price,omitempty"`
	Quantity      int             `json:"quantity,omitempty" validate:"gte=0"`
}

// PlanSummary is the read model of a plan's budget position.
type PlanSummary struct {
	PlanID         uint              `json:"plan_id"`
	PlanUUID       string            `json:"plan_uuid"`
	ClientID       uint              `json:"client_id"`
	Title          string            `json:"title"`
	TotalAvailable decimal.Decimal   `json:"total_available"`
	TotalAllocated decimal.Decimal   `json:"total_allocated"`
	Remaining      decimal.Decimal   `json:"remaining"`
	PercentUsed    int               `json:"percent_used"`
	Status         allocation.Status `json:"status"`
	LineItemCount  int               `json:"line_item_count"`
	StartDate      *time.Time        `json:"start_date"`
	EndDate        *time.Time        `json:"end_date"`
	IsActive       bool              `json:"is_active"`
	IsExpired      bool              `json:"is_expired"`
	ExpiringSoon   bool              `json:"expiring_soon"`
}

// StageResult reports what happened to a staged change. When the change
// needs a second step, Committed is false and ConfirmToken carries the
// token the caller must send back.
type StageResult struct {
	Decision        allocation.Decision    `json:"decision"`
	Delta           decimal.Decimal        `json:"delta"`
	ProposedTotal   decimal.Decimal        `json:"proposed_total"`
	Committed       bool                   `json:"committed"`
	ConfirmToken    string                 `json:"confirm_token,omitempty"`
	Summary         *PlanSummary           `json:"summary,omitempty"`
	ProposedSummary *PlanSummary           `json:"proposed_summary,omitempty"`
	LineItem        *models.BudgetLineItem `json:"line_item,omitempty"`
}

// UsageResult reports a usage booking against a line item.
type UsageResult struct {
	LineItem        *models.BudgetLineItem `json:"line_item"`
	BalanceQuantity int                    `json:"balance_quantity"`
	Exhausted       bool                   `json:"exhausted"`
}

// toLines converts persisted line items into calculator lines.
func toLines(items []models.BudgetLineItem) []allocation.Line {
	lines := make([]allocation.Line, len(items))
	for i, item := range items {
		lines[i] = allocation.Line{
			ID:        item.ID,
			Code:      item.Code,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Used:      item.UsedQuantity,
		}
	}
	return lines
}

// change converts the input into a calculator change.
func (in ChangeInput) change() (allocation.Change, error) {
	switch in.Action {
	case ActionAdd:
		return allocation.Change{
			Kind: allocation.ChangeAdd,
			Draft: &allocation.Draft{
				Code:        in.Code,
				Description: in.Description,
				UnitPrice:   in.UnitPrice,
				Quantity:    in.Quantity,
				Category:    in.Category,
			},
		}, nil
	case ActionUpdate:
		if in.LineItemID == 0 {
			return allocation.Change{}, fmt.Errorf("%w: line_item_id is required for update", ErrInvalidChange)
		}
		return allocation.Change{
			Kind:        allocation.ChangeUpdate,
			LineID:      in.LineItemID,
			NewQuantity: in.Quantity,
		}, nil
	case ActionRemove:
		if in.LineItemID == 0 {
			return allocation.Change{}, fmt.Errorf("%w: line_item_id is required for remove", ErrInvalidChange)
		}
		return allocation.Change{
			Kind:   allocation.ChangeRemove,
			LineID: in.LineItemID,
		}, nil
	default:
		return allocation.Change{}, fmt.Errorf("%w: unknown action %q", ErrInvalidChange, in.Action)
	}
}
