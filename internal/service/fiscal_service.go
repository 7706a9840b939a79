package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

type MonthlyCalculationRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// ISRProvisionalResponse carries the year-to-date provisional figures, all as
// fixed two-place decimal strings.
type ISRProvisionalResponse struct {
	AccumulatedIncome     string `json:"accumulated_income"`
	AccumulatedDeductions string `json:"accumulated_deductions"`
	TaxableIncome         string `json:"taxable_income"`
	ISRCalculated         string `json:"isr_calculated"`
	ISRAlreadyPaid        string `json:"isr_already_paid"`
	ISRRetained           string `json:"isr_retained"`
	ISRBalance            string `json:"isr_balance"`
}

// IVAMonthlyResponse carries the definitive monthly IVA figures. Balance may
// be negative: a credit in the taxpayer's favor.
type IVAMonthlyResponse struct {
	IVACollected  string `json:"iva_collected"`
	IVACreditable string `json:"iva_creditable"`
	IVARetained   string `json:"iva_retained"`
	CreditApplied string `json:"credit_applied"`
	IVABalance    string `json:"iva_balance"`
}

type MonthlyCalculationResponse struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	ISR   ISRProvisionalResponse `json:"isr"`
	IVA   IVAMonthlyResponse     `json:"iva"`
}

type CalculationRecordResponse struct {
	ID              string `json:"id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	CalculationType string `json:"calculation_type"`
	TotalIncome     string `json:"total_income"`
	TotalExpenses   string `json:"total_expenses"`
	TaxableIncome   string `json:"taxable_income"`
	Tax             string `json:"tax"`
	AlreadyPaid     string `json:"already_paid"`
	Retained        string `json:"retained"`
	Balance         string `json:"balance"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type UpdateCalculationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=calculated pending paid overdue"`
}

// --- Interface ---

type FiscalService interface {
	// CalculateMonthly runs the provisional ISR and definitive IVA
	// calculations for a period and persists both result records,
	// overwriting any previous run for the same period.
	CalculateMonthly(ctx context.Context, userID uuid.UUID, year, month int) (*MonthlyCalculationResponse, error)
	ListCalculations(ctx context.Context, userID uuid.UUID, year int) ([]CalculationRecordResponse, error)
	UpdateCalculationStatus(ctx context.Context, userID uuid.UUID, id string, status string) (*CalculationRecordResponse, error)
	DeleteCalculation(ctx context.Context, userID uuid.UUID, id string) error
}

type fiscalService struct {
	txManager repository.TransactionManager
	txRepo    repository.TransactionRepository
	calcRepo  repository.TaxCalculationRepository
	params    ParameterService
	auditSvc  AuditService
	hub       *websocket.Hub
}

func NewFiscalService(
	txManager repository.TransactionManager,
	txRepo repository.TransactionRepository,
	calcRepo repository.TaxCalculationRepository,
	params ParameterService,
	auditSvc AuditService,
	hub *websocket.Hub,
) FiscalService {
	return &fiscalService{
		txManager: txManager, txRepo: txRepo, calcRepo: calcRepo,
		params: params, auditSvc: auditSvc, hub: hub,
	}
}

// --- Implementation ---

// monthlyBreakdown is the serialized calculation detail stored on the result
// records for audit and history views.
type monthlyBreakdown struct {
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	TableSource   string `json:"table_source"`
	CreditApplied string `json:"credit_applied,omitempty"`
}

func (s *fiscalService) CalculateMonthly(ctx context.Context, userID uuid.UUID, year, month int) (*MonthlyCalculationResponse, error) {
	if err := fiscal.ValidatePeriod(year, month); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	// Provisional ISR accumulates from January 1st through month end.
	ytdStart, ytdEnd := fiscal.YearToDateRange(year, month)
	ytd, err := s.txRepo.AggregateRange(ctx, userID, ytdStart, ytdEnd)
	if err != nil {
		return nil, err
	}

	table, err := s.params.ResolveBracketTable(ctx, model.ParamTypeISRAnnualBrackets, ytdEnd)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		// Unreachable given the built-in default, but a zero tax figure must
		// never come out of a missing configuration.
		return nil, Coded(CodeDBNotConfigured, "no bracket table resolvable for %d-%02d", year, month)
	}

	priorISR, err := s.priorProvisional(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	isrRes := fiscal.ComputeProvisional(fiscal.ProvisionalInput{
		AccumulatedIncome:     money.FromCents(ytd.TotalIncomeCents),
		AccumulatedDeductions: money.FromCents(ytd.ISRDeductibleCents),
		AlreadyPaid:           priorISR,
		Retained:              money.FromCents(ytd.ISRWithheldCents),
	}, table)

	// Definitive IVA looks strictly at the calendar month.
	monthStart, monthEnd := fiscal.MonthRange(year, month)
	monthAgg, err := s.txRepo.AggregateRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	priorIVA, err := s.priorIVABalance(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	ivaRes := fiscal.ComputeMonthlyIVA(fiscal.IVAInput{
		Collected:    money.FromCents(monthAgg.IVACollectedCents),
		Creditable:   money.FromCents(monthAgg.IVACreditableCents),
		Retained:     money.FromCents(monthAgg.IVAWithheldCents),
		PriorBalance: priorIVA,
	})

	if err := s.persistMonthly(ctx, userID, year, month, ytd, monthAgg, isrRes, ivaRes); err != nil {
		return nil, err
	}

	resp := &MonthlyCalculationResponse{
		Year:  year,
		Month: month,
		ISR: ISRProvisionalResponse{
			AccumulatedIncome:     money.Format(money.FromCents(ytd.TotalIncomeCents)),
			AccumulatedDeductions: money.Format(money.FromCents(ytd.ISRDeductibleCents)),
			TaxableIncome:         money.Format(isrRes.TaxableIncome),
			ISRCalculated:         money.Format(isrRes.ISRCalculated),
			ISRAlreadyPaid:        money.Format(isrRes.AlreadyPaid),
			ISRRetained:           money.Format(isrRes.Retained),
			ISRBalance:            money.Format(isrRes.ISRBalance),
		},
		IVA: IVAMonthlyResponse{
			IVACollected:  money.Format(ivaRes.Collected),
			IVACreditable: money.Format(ivaRes.Creditable),
			IVARetained:   money.Format(ivaRes.Retained),
			CreditApplied: money.Format(ivaRes.CreditApplied),
			IVABalance:    money.Format(ivaRes.Balance),
		},
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionRunMonthlyCalculation,
		fmt.Sprintf("%d-%02d", year, month), "monthly calculation", resp)
	s.hub.BroadcastEvent(websocket.EventCalculationCompleted, map[string]interface{}{
		"user_id": userID.String(), "year": year, "month": month,
		"isr_balance": resp.ISR.ISRBalance, "iva_balance": resp.IVA.IVABalance,
	})

	return resp, nil
}

// priorProvisional folds the already-persisted provisional records of the
// same year into the amount covered before this month.
func (s *fiscalService) priorProvisional(ctx context.Context, userID uuid.UUID, year, month int) (decimal.Decimal, error) {
	records, err := s.calcRepo.ListYear(ctx, userID, year, model.CalcTypeMonthlyProvisionalISR)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch prior provisional records: %w", err)
	}

	periods := make([]fiscal.PeriodTax, 0, len(records))
	for _, r := range records {
		periods = append(periods, fiscal.PeriodTax{
			Month:  r.Month,
			Status: r.Status,
			ISR:    money.FromCents(r.TaxCents),
		})
	}
	return fiscal.SumPriorProvisional(periods, month), nil
}

// priorIVABalance returns the previous month's persisted IVA balance, signed.
// January reaches back into December of the prior year. No record means no
// carry-forward.
func (s *fiscalService) priorIVABalance(ctx context.Context, userID uuid.UUID, year, month int) (decimal.Decimal, error) {
	py, pm := fiscal.PriorMonth(year, month)
	record, err := s.calcRepo.FindPeriod(ctx, userID, py, pm, model.CalcTypeDefinitiveIVA)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to fetch prior IVA record: %w", err)
	}
	return money.FromCents(record.BalanceCents), nil
}

// persistMonthly writes the ISR and IVA result records in one database
// transaction; a period never ends up with only half its results.
func (s *fiscalService) persistMonthly(
	ctx context.Context,
	userID uuid.UUID,
	year, month int,
	ytd, monthAgg *model.PeriodAggregate,
	isrRes fiscal.ProvisionalResult,
	ivaRes fiscal.IVAResult,
) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.writeMonthlyRecords(txCtx, userID, year, month, ytd, monthAgg, isrRes, ivaRes)
	})
}

func (s *fiscalService) writeMonthlyRecords(
	ctx context.Context,
	userID uuid.UUID,
	year, month int,
	ytd, monthAgg *model.PeriodAggregate,
	isrRes fiscal.ProvisionalResult,
	ivaRes fiscal.IVAResult,
) error {
	isrBreakdown, _ := json.Marshal(monthlyBreakdown{
		PeriodStart: ytd.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   ytd.PeriodEnd.Format("2006-01-02"),
		TableSource: model.ParamTypeISRAnnualBrackets,
	})
	ivaBreakdown, _ := json.Marshal(monthlyBreakdown{
		PeriodStart:   monthAgg.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     monthAgg.PeriodEnd.Format("2006-01-02"),
		TableSource:   "transaction iva amounts",
		CreditApplied: money.Format(ivaRes.CreditApplied),
	})

	isrRecord := model.TaxCalculationRecord{
		UserID:             userID,
		Year:               year,
		Month:              month,
		CalculationType:    model.CalcTypeMonthlyProvisionalISR,
		TotalIncomeCents:   ytd.TotalIncomeCents,
		TotalExpensesCents: ytd.ISRDeductibleCents,
		TaxableIncomeCents: money.ToCents(isrRes.TaxableIncome),
		TaxCents:           money.ToCents(isrRes.ISRCalculated),
		AlreadyPaidCents:   money.ToCents(isrRes.AlreadyPaid),
		RetainedCents:      money.ToCents(isrRes.Retained),
		BalanceCents:       money.ToCents(isrRes.ISRBalance),
		Breakdown:          string(isrBreakdown),
		Status:             model.CalcStatusCalculated,
	}
	if err := s.calcRepo.Upsert(ctx, &isrRecord); err != nil {
		return fmt.Errorf("failed to persist ISR calculation: %w", err)
	}

	ivaRecord := model.TaxCalculationRecord{
		UserID:             userID,
		Year:               year,
		Month:              month,
		CalculationType:    model.CalcTypeDefinitiveIVA,
		TotalIncomeCents:   monthAgg.TotalIncomeCents,
		TotalExpensesCents: monthAgg.TotalExpensesCents,
		TaxCents:           money.ToCents(ivaRes.Collected),
		AlreadyPaidCents:   money.ToCents(ivaRes.Creditable),
		RetainedCents:      money.ToCents(ivaRes.Retained),
		BalanceCents:       money.ToCents(ivaRes.Balance),
		Breakdown:          string(ivaBreakdown),
		Status:             model.CalcStatusCalculated,
	}
	if err := s.calcRepo.Upsert(ctx, &ivaRecord); err != nil {
		return fmt.Errorf("failed to persist IVA calculation: %w", err)
	}

	return nil
}

func (s *fiscalService) ListCalculations(ctx context.Context, userID uuid.UUID, year int) ([]CalculationRecordResponse, error) {
	if err := fiscal.ValidateYear(year); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	records, err := s.calcRepo.ListByYear(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calculations: %w", err)
	}

	res := make([]CalculationRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, toCalculationResponse(r))
	}
	return res, nil
}

func (s *fiscalService) UpdateCalculationStatus(ctx context.Context, userID uuid.UUID, id string, status string) (*CalculationRecordResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, Coded(CodeValidationError, "invalid calculation id: %v", err)
	}

	record, err := s.calcRepo.FindByID(ctx, userID, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Coded(CodeNotFound, "calculation not found")
		}
		return nil, fmt.Errorf("failed to fetch calculation: %w", err)
	}

	// Paid is terminal; everything else may move freely between the
	// lifecycle states.
	if record.Status == model.CalcStatusPaid && status != model.CalcStatusPaid {
		return nil, Coded(CodeConflict, "a paid calculation cannot change status")
	}

	if err := s.calcRepo.UpdateStatus(ctx, userID, recordID, status); err != nil {
		return nil, fmt.Errorf("failed to update calculation status: %w", err)
	}

	record.Status = status
	resp := toCalculationResponse(*record)
	return &resp, nil
}

func (s *fiscalService) DeleteCalculation(ctx context.Context, userID uuid.UUID, id string) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return Coded(CodeValidationError, "invalid calculation id: %v", err)
	}

	if err := s.calcRepo.Delete(ctx, userID, recordID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Coded(CodeNotFound, "calculation not found")
		}
		return fmt.Errorf("failed to delete calculation: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionDeleteCalculation, id, "", nil)
	return nil
}

func toCalculationResponse(r model.TaxCalculationRecord) CalculationRecordResponse {
	return CalculationRecordResponse{
		ID:              r.ID.String(),
		Year:            r.Year,
		Month:           r.Month,
		CalculationType: r.CalculationType,
		TotalIncome:     money.Format(money.FromCents(r.TotalIncomeCents)),
		TotalExpenses:   money.Format(money.FromCents(r.TotalExpensesCents)),
		TaxableIncome:   money.Format(money.FromCents(r.TaxableIncomeCents)),
		Tax:             money.Format(money.FromCents(r.TaxCents)),
		AlreadyPaid:     money.Format(money.FromCents(r.AlreadyPaidCents)),
		Retained:        money.Format(money.FromCents(r.RetainedCents)),
		Balance:         money.Format(money.FromCents(r.BalanceCents)),
		Status:          r.Status,
		CreatedAt:       r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
