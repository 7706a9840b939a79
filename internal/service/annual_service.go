package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contable/internal/fiscal"
	"contable/internal/model"
	"contable/internal/repository"
	"contable/internal/websocket"
	"contable/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// PersonalDeductionItem is one deducción personal claimed on the annual
// return (medical, funeral, tuition, mortgage interest, retirement fund...).
type PersonalDeductionItem struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"` // decimal string, pesos
}

type AnnualDeclarationRequest struct {
	Year       int                     `json:"year" binding:"required"`
	Deductions []PersonalDeductionItem `json:"deductions"`
}

type AnnualDeclarationResponse struct {
	ID                 string                  `json:"id"`
	FiscalYear         int                     `json:"fiscal_year"`
	DeclarationType    string                  `json:"declaration_type"`
	TotalIncome        string                  `json:"total_income"`
	TotalDeductions    string                  `json:"total_deductions"`
	PersonalDeductions string                  `json:"personal_deductions"`
	TaxableIncome      string                  `json:"taxable_income"`
	ISRAnnual          string                  `json:"isr_annual"`
	ProvisionalPaid    string                  `json:"provisional_paid"`
	Retained           string                  `json:"retained"`
	FinalBalance       string                  `json:"final_balance"` // negative = refund in favor
	Deductions         []PersonalDeductionItem `json:"deductions,omitempty"`
	Status             string                  `json:"status"`
	SubmittedAt        *string                 `json:"submitted_at"`
	CreatedAt          string                  `json:"created_at"`
}

// --- Interface ---

type AnnualService interface {
	// Calculate runs (or re-runs) the annual ISR settlement for a fiscal
	// year. Re-running overwrites the stored declaration unless it has
	// already been submitted.
	Calculate(ctx context.Context, userID uuid.UUID, req AnnualDeclarationRequest) (*AnnualDeclarationResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]AnnualDeclarationResponse, error)
	// Submit marks a declaration as filed. One way: a submitted or accepted
	// declaration rejects further submissions.
	Submit(ctx context.Context, userID uuid.UUID, id string) (*AnnualDeclarationResponse, error)
}

type annualService struct {
	txRepo     repository.TransactionRepository
	calcRepo   repository.TaxCalculationRepository
	annualRepo repository.AnnualDeclarationRepository
	params     ParameterService
	auditSvc   AuditService
	hub        *websocket.Hub
}

func NewAnnualService(
	txRepo repository.TransactionRepository,
	calcRepo repository.TaxCalculationRepository,
	annualRepo repository.AnnualDeclarationRepository,
	params ParameterService,
	auditSvc AuditService,
	hub *websocket.Hub,
) AnnualService {
	return &annualService{
		txRepo: txRepo, calcRepo: calcRepo, annualRepo: annualRepo,
		params: params, auditSvc: auditSvc, hub: hub,
	}
}

// --- Implementation ---

func (s *annualService) Calculate(ctx context.Context, userID uuid.UUID, req AnnualDeclarationRequest) (*AnnualDeclarationResponse, error) {
	if err := fiscal.ValidateYear(req.Year); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	personal, err := sumPersonalDeductions(req.Deductions)
	if err != nil {
		return nil, err
	}

	existing, err := s.annualRepo.FindYear(ctx, userID, req.Year, model.DeclarationTypeISR)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch annual declaration: %w", err)
	}
	if existing != nil && existing.Locked() {
		return nil, Coded(CodeConflict, "annual declaration for %d was already submitted", req.Year)
	}

	yearStart, yearEnd := fiscal.YearRange(req.Year)
	agg, err := s.txRepo.AggregateRange(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	table, err := s.params.ResolveBracketTable(ctx, model.ParamTypeISRAnnualBrackets, yearEnd)
	if err != nil {
		return nil, err
	}

	provisionalPaid, err := s.provisionalPaidForYear(ctx, userID, req.Year)
	if err != nil {
		return nil, err
	}

	res := fiscal.SettleAnnual(fiscal.AnnualInput{
		TotalIncome:        money.FromCents(agg.TotalIncomeCents),
		TotalDeductions:    money.FromCents(agg.ISRDeductibleCents),
		PersonalDeductions: personal,
		ProvisionalPaid:    provisionalPaid,
		Retained:           money.FromCents(agg.ISRWithheldCents),
	}, table)

	deductionsJSON, _ := json.Marshal(req.Deductions)
	decl := model.AnnualDeclaration{
		UserID:                  userID,
		FiscalYear:              req.Year,
		DeclarationType:         model.DeclarationTypeISR,
		TotalIncomeCents:        agg.TotalIncomeCents,
		TotalDeductionsCents:    agg.ISRDeductibleCents,
		PersonalDeductionsCents: money.ToCents(personal),
		TaxableIncomeCents:      money.ToCents(res.TaxableIncome),
		ISRAnnualCents:          money.ToCents(res.ISRAnnual),
		ProvisionalPaidCents:    money.ToCents(provisionalPaid),
		RetainedCents:           agg.ISRWithheldCents,
		FinalBalanceCents:       money.ToCents(res.FinalBalance),
		Deductions:              string(deductionsJSON),
		Status:                  model.AnnualStatusCalculated,
	}

	if err := s.annualRepo.Upsert(ctx, &decl); err != nil {
		return nil, fmt.Errorf("failed to persist annual declaration: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionRunAnnualDeclaration,
		fmt.Sprintf("%d", req.Year), "annual ISR settlement", req)

	resp := toAnnualResponse(decl)
	return &resp, nil
}

// provisionalPaidForYear sums the provisional payments actually made across
// the year: each month's persisted balance with status calculated or paid.
func (s *annualService) provisionalPaidForYear(ctx context.Context, userID uuid.UUID, year int) (decimal.Decimal, error) {
	records, err := s.calcRepo.ListYear(ctx, userID, year, model.CalcTypeMonthlyProvisionalISR)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch provisional records: %w", err)
	}

	total := decimal.Zero
	for _, r := range records {
		if r.Status != model.CalcStatusCalculated && r.Status != model.CalcStatusPaid {
			continue
		}
		total = total.Add(money.FromCents(r.BalanceCents))
	}
	return total, nil
}

func (s *annualService) List(ctx context.Context, userID uuid.UUID) ([]AnnualDeclarationResponse, error) {
	decls, err := s.annualRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch annual declarations: %w", err)
	}

	res := make([]AnnualDeclarationResponse, 0, len(decls))
	for _, d := range decls {
		res = append(res, toAnnualResponse(d))
	}
	return res, nil
}

func (s *annualService) Submit(ctx context.Context, userID uuid.UUID, id string) (*AnnualDeclarationResponse, error) {
	declID, err := uuid.Parse(id)
	if err != nil {
		return nil, Coded(CodeValidationError, "invalid declaration id: %v", err)
	}

	decl, err := s.annualRepo.FindByID(ctx, userID, declID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Coded(CodeNotFound, "annual declaration not found")
		}
		return nil, fmt.Errorf("failed to fetch annual declaration: %w", err)
	}

	if !decl.Submittable() {
		return nil, Coded(CodeConflict, "declaration is already %s", decl.Status)
	}

	now := time.Now().UTC()
	decl.Status = model.AnnualStatusSubmitted
	decl.SubmittedAt = &now
	if err := s.annualRepo.Update(ctx, decl); err != nil {
		return nil, fmt.Errorf("failed to submit annual declaration: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionSubmitAnnualDeclaration,
		decl.ID.String(), fmt.Sprintf("annual %d", decl.FiscalYear), nil)
	s.hub.BroadcastEvent(websocket.EventDeclarationSubmitted, map[string]interface{}{
		"user_id": userID.String(), "fiscal_year": decl.FiscalYear,
	})

	resp := toAnnualResponse(*decl)
	return &resp, nil
}

// --- Helpers ---

// personalDeductionTypes are the deducción personal categories recognized on
// the annual return (LISR art. 151).
var personalDeductionTypes = map[string]bool{
	"medical":           true,
	"funeral":           true,
	"donations":         true,
	"mortgage_interest": true,
	"retirement_fund":   true,
	"medical_insurance": true,
	"school_transport":  true,
	"tuition":           true,
}

func sumPersonalDeductions(items []PersonalDeductionItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, item := range items {
		if !personalDeductionTypes[item.Type] {
			return decimal.Zero, Coded(CodeValidationError, "deduction %d: unknown type %q", i, item.Type)
		}
		amount, err := money.ParseAmount(item.Amount)
		if err != nil {
			return decimal.Zero, Coded(CodeValidationError, "deduction %d: %v", i, err)
		}
		if !amount.IsPositive() {
			return decimal.Zero, Coded(CodeValidationError, "deduction %d: amount must be positive", i)
		}
		total = total.Add(amount)
	}
	return total, nil
}

func toAnnualResponse(d model.AnnualDeclaration) AnnualDeclarationResponse {
	resp := AnnualDeclarationResponse{
		ID:                 d.ID.String(),
		FiscalYear:         d.FiscalYear,
		DeclarationType:    d.DeclarationType,
		TotalIncome:        money.Format(money.FromCents(d.TotalIncomeCents)),
		TotalDeductions:    money.Format(money.FromCents(d.TotalDeductionsCents)),
		PersonalDeductions: money.Format(money.FromCents(d.PersonalDeductionsCents)),
		TaxableIncome:      money.Format(money.FromCents(d.TaxableIncomeCents)),
		ISRAnnual:          money.Format(money.FromCents(d.ISRAnnualCents)),
		ProvisionalPaid:    money.Format(money.FromCents(d.ProvisionalPaidCents)),
		Retained:           money.Format(money.FromCents(d.RetainedCents)),
		FinalBalance:       money.Format(money.FromCents(d.FinalBalanceCents)),
		Status:             d.Status,
		CreatedAt:          d.CreatedAt.Format(time.RFC3339),
	}
	if d.Deductions != "" {
		_ = json.Unmarshal([]byte(d.Deductions), &resp.Deductions)
	}
	if d.SubmittedAt != nil {
		ts := d.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &ts
	}
	return resp
}
