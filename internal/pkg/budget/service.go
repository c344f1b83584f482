package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/allocation"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/env"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/security"
)

// Config carries the calculator thresholds and confirmation token settings.
type Config struct {
	Alloc        allocation.Config
	TokenSecret  string
	TokenTTL     time.Duration
	ExpiryWindow time.Duration
}

// LoadConfig reads the service configuration from the environment.
func LoadConfig() Config {
	cfg := Config{
		Alloc:        allocation.DefaultConfig(),
		TokenSecret:  env.GetEnv("CONFIRM_TOKEN_SECRET", ""),
		TokenTTL:     15 * time.Minute,
		ExpiryWindow: 30 * 24 * time.Hour,
	}
	if v, err := strconv.Atoi(env.GetEnv("ALLOC_HIGH_USAGE_PERCENT", "")); err == nil && v > 0 {
		cfg.Alloc.HighUsagePercent = v
	}
	if v, err := strconv.Atoi(env.GetEnv("ALLOC_CRITICAL_PERCENT", "")); err == nil && v > 0 {
		cfg.Alloc.CriticalPercent = v
	}
	if v, err := strconv.Atoi(env.GetEnv("CONFIRM_TOKEN_TTL_MINUTES", "")); err == nil && v > 0 {
		cfg.TokenTTL = time.Duration(v) * time.Minute
	}
	if v, err := strconv.Atoi(env.GetEnv("PLAN_EXPIRY_WINDOW_DAYS", "")); err == nil && v > 0 {
		cfg.ExpiryWindow = time.Duration(v) * 24 * time.Hour
	}
	return cfg
}

// Service runs the budget edit flow for plans: staging line item changes,
// deciding whether they commit directly or need confirmation, committing
// confirmed changes, and booking delivered usage.
type Service struct {
	plans   repository.BudgetPlanRepository
	items   repository.LineItemRepository
	catalog repository.CatalogRepository
	cfg     Config
}

// NewService creates a budget service from injected repositories.
func NewService(plans repository.BudgetPlanRepository, items repository.LineItemRepository, catalog repository.CatalogRepository, cfg Config) *Service {
	return &Service{plans: plans, items: items, catalog: catalog, cfg: cfg}
}

// NewServiceFromFactory creates a budget service from the repository factory.
func NewServiceFromFactory(f *repository.Factory, cfg Config) *Service {
	return NewService(f.GetBudgetPlanRepository(), f.GetLineItemRepository(), f.GetCatalogRepository(), cfg)
}

// Summary returns the plan's current budget position.
func (s *Service) Summary(ctx context.Context, planID uint) (*PlanSummary, error) {
	plan, err := s.plans.GetByIDWithLineItems(planID)
	if err != nil {
		return nil, err
	}
	return s.summaryFor(plan, toLines(plan.LineItems)), nil
}

// Preview evaluates a change without committing anything and without
// issuing a confirmation token.
func (s *Service) Preview(ctx context.Context, planID uint, in ChangeInput) (*StageResult, error) {
	plan, err := s.plans.GetByIDWithLineItems(planID)
	if err != nil {
		return nil, err
	}

	in, ch, err := s.resolveChange(plan, in)
	if err != nil {
		return nil, err
	}

	next, eval, err := allocation.EvaluateLines(plan.TotalAvailable, toLines(plan.LineItems), ch)
	if err != nil {
		return nil, err
	}

	return &StageResult{
		Decision:        eval.Decision,
		Delta:           eval.Delta,
		ProposedTotal:   eval.ProposedTotal,
		Committed:       false,
		Summary:         s.summaryFor(plan, toLines(plan.LineItems)),
		ProposedSummary: s.summaryFor(plan, next),
	}, nil
}

// StageLineChange evaluates a change against the plan budget. A change
// that lands exactly on the available total commits immediately. Any
// other outcome returns uncommitted with a confirmation token; the
// caller resubmits the same change through CommitConfirmed to apply it.
func (s *Service) StageLineChange(ctx context.Context, userID, planID uint, in ChangeInput) (*StageResult, error) {
	plan, err := s.plans.GetByIDWithLineItems(planID)
	if err != nil {
		return nil, err
	}

	in, ch, err := s.resolveChange(plan, in)
	if err != nil {
		return nil, err
	}

	next, eval, err := allocation.EvaluateLines(plan.TotalAvailable, toLines(plan.LineItems), ch)
	if err != nil {
		return nil, err
	}

	if eval.Decision == allocation.DecisionProceed {
		item, err := s.persistChange(plan, ch, in)
		if err != nil {
			return nil, err
		}
		summary, err := s.Summary(ctx, planID)
		if err != nil {
			return nil, err
		}
		return &StageResult{
			Decision:      eval.Decision,
			Delta:         eval.Delta,
			ProposedTotal: eval.ProposedTotal,
			Committed:     true,
			Summary:       summary,
			LineItem:      item,
		}, nil
	}

	token, err := security.GenerateConfirmToken(
		userID, planID,
		security.DigestChange(canonicalChange(in)),
		eval.ProposedTotal.StringFixed(2),
		s.cfg.TokenTTL, s.cfg.TokenSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	return &StageResult{
		Decision:        eval.Decision,
		Delta:           eval.Delta,
		ProposedTotal:   eval.ProposedTotal,
		Committed:       false,
		ConfirmToken:    token,
		Summary:         s.summaryFor(plan, toLines(plan.LineItems)),
		ProposedSummary: s.summaryFor(plan, next),
	}, nil
}

// CommitConfirmed applies a change the user confirmed. The token must
// have been issued for the same user, plan and change payload, and the
// plan must still evaluate to the total the user saw when confirming.
func (s *Service) CommitConfirmed(ctx context.Context, userID, planID uint, token string, in ChangeInput) (*StageResult, error) {
	claims, err := security.VerifyConfirmToken(token, s.cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfirmTokenMismatch, err)
	}
	if claims.UserID != userID || claims.PlanID != planID {
		return nil, ErrConfirmTokenMismatch
	}

	plan, err := s.plans.GetByIDWithLineItems(planID)
	if err != nil {
		return nil, err
	}

	in, ch, err := s.resolveChange(plan, in)
	if err != nil {
		return nil, err
	}
	if security.DigestChange(canonicalChange(in)) != claims.ChangeDigest {
		return nil, ErrConfirmTokenMismatch
	}

	_, eval, err := allocation.EvaluateLines(plan.TotalAvailable, toLines(plan.LineItems), ch)
	if err != nil {
		return nil, err
	}
	if eval.ProposedTotal.StringFixed(2) != claims.ProposedTotal {
		return nil, ErrStaleConfirmation
	}

	item, err := s.persistChange(plan, ch, in)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &StageResult{
		Decision:      eval.Decision,
		Delta:         eval.Delta,
		ProposedTotal: eval.ProposedTotal,
		Committed:     true,
		Summary:       summary,
		LineItem:      item,
	}, nil
}

// DeleteLineItem removes a line item. The caller must send the literal
// confirmation text; the budget delta of the removal is reported back
// but never blocks the delete.
func (s *Service) DeleteLineItem(ctx context.Context, planID, lineItemID uint, confirmText string) (*StageResult, error) {
	if strings.TrimSpace(confirmText) != DeleteConfirmText {
		return nil, ErrConfirmTextMismatch
	}

	plan, err := s.plans.GetByIDWithLineItems(planID)
	if err != nil {
		return nil, err
	}
	if !planHasLine(plan, lineItemID) {
		return nil, ErrLineNotInPlan
	}

	ch := allocation.Change{Kind: allocation.ChangeRemove, LineID: lineItemID}
	_, eval, err := allocation.EvaluateLines(plan.TotalAvailable, toLines(plan.LineItems), ch)
	if err != nil {
		return nil, err
	}

	if err := s.items.Delete(lineItemID); err != nil {
		return nil, err
	}

	summary, err := s.Summary(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &StageResult{
		Decision:      eval.Decision,
		Delta:         eval.Delta,
		ProposedTotal: eval.ProposedTotal,
		Committed:     true,
		Summary:       summary,
	}, nil
}

// RecordUsage books delivered units against a line item. Usage can never
// exceed the booked quantity.
func (s *Service) RecordUsage(ctx context.Context, planID, lineItemID uint, units int) (*UsageResult, error) {
	if units <= 0 {
		return nil, errors.New("units must be positive")
	}

	item, err := s.items.GetByID(lineItemID)
	if err != nil {
		return nil, err
	}
	if item.PlanID != planID {
		return nil, ErrLineNotInPlan
	}
	if item.UsedQuantity+units > item.Quantity {
		return nil, ErrUsageExceedsQuantity
	}

	item.UsedQuantity += units
	if err := s.items.Update(item); err != nil {
		return nil, err
	}

	return &UsageResult{
		LineItem:        item,
		BalanceQuantity: item.BalanceQuantity(),
		Exhausted:       item.BalanceQuantity() == 0,
	}, nil
}

// resolveChange normalizes the input and converts it to a calculator
// change. Adds drawn from the catalog inherit code and category and are
// checked against the price cap.
func (s *Service) resolveChange(plan *models.BudgetPlan, in ChangeInput) (ChangeInput, allocation.Change, error) {
	if in.Action == ActionAdd {
		if in.CatalogItemID != nil {
			catalogItem, err := s.catalog.GetByID(*in.CatalogItemID)
			if err != nil {
				return in, allocation.Change{}, fmt.Errorf("failed to resolve catalog item: %w", err)
			}
			if in.Code == "" {
				in.Code = catalogItem.Code
			}
			if in.Category == "" {
				in.Category = catalogItem.Category
			}
			if in.Description == "" {
				in.Description = catalogItem.Name
			}
			if catalogItem.ExceedsPriceCap(in.UnitPrice) {
				return in, allocation.Change{}, ErrPriceAboveCap
			}
		}
		if in.Category == "" {
			in.Category = models.CategoryCore
		}
	}
	if in.Action != ActionAdd && in.LineItemID != 0 && !planHasLine(plan, in.LineItemID) {
		return in, allocation.Change{}, ErrLineNotInPlan
	}

	ch, err := in.change()
	return in, ch, err
}

// persistChange writes the evaluated change through the repositories.
func (s *Service) persistChange(plan *models.BudgetPlan, ch allocation.Change, in ChangeInput) (*models.BudgetLineItem, error) {
	switch ch.Kind {
	case allocation.ChangeAdd:
		item := &models.BudgetLineItem{
			PlanID:        plan.ID,
			CatalogItemID: in.CatalogItemID,
			Code:          in.Code,
			Description:   in.Description,
			Category:      in.Category,
			UnitPrice:     in.UnitPrice,
			Quantity:      in.Quantity,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if err := s.items.Create(item); err != nil {
			return nil, err
		}
		return item, nil
	case allocation.ChangeUpdate:
		item, err := s.items.GetByID(ch.LineID)
		if err != nil {
			return nil, err
		}
		item.Quantity = ch.NewQuantity
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if err := s.items.Update(item); err != nil {
			return nil, err
		}
		return item, nil
	case allocation.ChangeRemove:
		return nil, s.items.Delete(ch.LineID)
	default:
		return nil, fmt.Errorf("unknown change kind %q", ch.Kind)
	}
}

// summaryFor builds the read model from a plan and its calculator lines.
func (s *Service) summaryFor(plan *models.BudgetPlan, lines []allocation.Line) *PlanSummary {
	now := time.Now()
	cmp := allocation.Compare(plan.TotalAvailable, allocation.Total(lines), s.cfg.Alloc)
	return &PlanSummary{
		PlanID:         plan.ID,
		PlanUUID:       plan.UUID,
		ClientID:       plan.ClientID,
		Title:          plan.Title,
		TotalAvailable: cmp.TotalAvailable,
		TotalAllocated: cmp.TotalAllocated,
		Remaining:      cmp.Remaining,
		PercentUsed:    cmp.PercentUsed,
		Status:         cmp.Status,
		LineItemCount:  len(lines),
		StartDate:      plan.StartDate,
		EndDate:        plan.EndDate,
		IsActive:       plan.IsActive,
		IsExpired:      plan.IsExpired(now),
		ExpiringSoon:   plan.ExpiresWithin(now, s.cfg.ExpiryWindow),
	}
}

// canonicalChange renders the change payload for digesting into a token.
func canonicalChange(in ChangeInput) []byte {
	payload, _ := json.Marshal(in)
	return payload
}

func planHasLine(plan *models.BudgetPlan, lineItemID uint) bool {
	for _, item := range plan.LineItems {
		if item.ID == lineItemID {
			return true
		}
	}
	return false
}
