package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contable/internal/fiscal"
	"contable/internal/model"
	"contable/internal/repository"
	"contable/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type SatDeclarationRequest struct {
	Year             int    `json:"year" binding:"required"`
	Month            int    `json:"month" binding:"required"`
	DeclarationType  string `json:"declaration_type" binding:"required,oneof=isr iva"`
	DeclaredIncome   string `json:"declared_income" binding:"required"`
	DeclaredExpenses string `json:"declared_expenses" binding:"required"`
	DeclaredISR      string `json:"declared_isr" binding:"required"`
	DeclaredIVA      string `json:"declared_iva" binding:"required"`
}

type SatDeclarationResponse struct {
	ID               string `json:"id"`
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	DeclarationType  string `json:"declaration_type"`
	DeclaredIncome   string `json:"declared_income"`
	DeclaredExpenses string `json:"declared_expenses"`
	DeclaredISR      string `json:"declared_isr"`
	DeclaredIVA      string `json:"declared_iva"`
	UpdatedAt        string `json:"updated_at"`
}

type DiscrepancyResponse struct {
	Field          string `json:"field"`
	AppValue       string `json:"app_value"`
	DeclaredValue  string `json:"declared_value"`
	Difference     string `json:"difference"`
	PercentageDiff string `json:"percentage_diff"`
	Severity       string `json:"severity"`
}

// ReconciliationReport is the outcome of diffing the engine's own figures for
// a month against what was filed with SAT. Clean means no discrepancy survived
// the tolerance band.
type ReconciliationReport struct {
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	Clean         bool                  `json:"clean"`
	MaxSeverity   string                `json:"max_severity,omitempty"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
	GeneratedAt   string                `json:"generated_at"`
}

// --- Interface ---

type ReconciliationService interface {
	UpsertDeclaration(ctx context.Context, userID uuid.UUID, req SatDeclarationRequest) (*SatDeclarationResponse, error)
	ListDeclarations(ctx context.Context, userID uuid.UUID, year int) ([]SatDeclarationResponse, error)
	// Reconcile compares the stored calculation records for a month against
	// the SAT declaration entered for it. Both sides must already exist.
	Reconcile(ctx context.Context, userID uuid.UUID, year, month int) (*ReconciliationReport, error)
}

type reconciliationService struct {
	satRepo  repository.SatDeclarationRepository
	calcRepo repository.TaxCalculationRepository
	auditSvc AuditService
}

func NewReconciliationService(
	satRepo repository.SatDeclarationRepository,
	calcRepo repository.TaxCalculationRepository,
	auditSvc AuditService,
) ReconciliationService {
	return &reconciliationService{satRepo: satRepo, calcRepo: calcRepo, auditSvc: auditSvc}
}

// --- Implementation ---

func (s *reconciliationService) UpsertDeclaration(ctx context.Context, userID uuid.UUID, req SatDeclarationRequest) (*SatDeclarationResponse, error) {
	if err := fiscal.ValidatePeriod(req.Year, req.Month); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	income, err := parseNonNegative("declared_income", req.DeclaredIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := parseNonNegative("declared_expenses", req.DeclaredExpenses)
	if err != nil {
		return nil, err
	}
	isr, err := parseNonNegative("declared_isr", req.DeclaredISR)
	if err != nil {
		return nil, err
	}
	iva, err := money.ParseAmount(req.DeclaredIVA) // signed: iva a favor declares negative
	if err != nil {
		return nil, Coded(CodeValidationError, "declared_iva: %v", err)
	}

	decl := model.SatDeclaration{
		UserID:                userID,
		Year:                  req.Year,
		Month:                 req.Month,
		DeclarationType:       req.DeclarationType,
		DeclaredIncomeCents:   money.ToCents(income),
		DeclaredExpensesCents: money.ToCents(expenses),
		DeclaredISRCents:      money.ToCents(isr),
		DeclaredIVACents:      money.ToCents(iva),
	}
	if err := s.satRepo.Upsert(ctx, &decl); err != nil {
		return nil, fmt.Errorf("failed to save SAT declaration: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionUpsertSatDeclaration,
		fmt.Sprintf("%d-%02d", req.Year, req.Month), req.DeclarationType, req)

	resp := toSatDeclarationResponse(decl)
	return &resp, nil
}

func (s *reconciliationService) ListDeclarations(ctx context.Context, userID uuid.UUID, year int) ([]SatDeclarationResponse, error) {
	if err := fiscal.ValidateYear(year); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	decls, err := s.satRepo.ListYear(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch SAT declarations: %w", err)
	}

	res := make([]SatDeclarationResponse, 0, len(decls))
	for _, d := range decls {
		res = append(res, toSatDeclarationResponse(d))
	}
	return res, nil
}

func (s *reconciliationService) Reconcile(ctx context.Context, userID uuid.UUID, year, month int) (*ReconciliationReport, error) {
	if err := fiscal.ValidatePeriod(year, month); err != nil {
		return nil, Coded(CodeValidationError, "%v", err)
	}

	app, err := s.appFigures(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	satISR, err := s.satRepo.FindPeriod(ctx, userID, year, month, model.DeclarationTypeISR)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch SAT declaration: %w", err)
	}
	satIVA, err := s.satRepo.FindPeriod(ctx, userID, year, month, model.DeclarationTypeIVA)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch SAT declaration: %w", err)
	}
	if satISR == nil && satIVA == nil {
		return nil, Coded(CodeNotFound, "no SAT declaration entered for %d-%02d", year, month)
	}

	declared := declaredFigures(satISR, satIVA)
	discrepancies := fiscal.Compare(app, declared)

	report := ReconciliationReport{
		Year:          year,
		Month:         month,
		Clean:         len(discrepancies) == 0,
		Discrepancies: make([]DiscrepancyResponse, 0, len(discrepancies)),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, d := range discrepancies {
		report.Discrepancies = append(report.Discrepancies, DiscrepancyResponse{
			Field:          d.Field,
			AppValue:       money.Format(d.AppValue),
			DeclaredValue:  money.Format(d.DeclaredValue),
			Difference:     money.Format(d.Difference),
			PercentageDiff: d.PercentageDiff.Round(2).String(),
			Severity:       d.Severity,
		})
		if severityRank(d.Severity) > severityRank(report.MaxSeverity) {
			report.MaxSeverity = d.Severity
		}
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionRunReconciliation,
		fmt.Sprintf("%d-%02d", year, month), report.MaxSeverity, nil)

	return &report, nil
}

// appFigures rebuilds the engine-side Figures for a month from the stored
// calculation records: income and expenses from the IVA record (which holds
// the month's own window, not the year-to-date one), ISR from the provisional
// balance and IVA from the definitive balance.
func (s *reconciliationService) appFigures(ctx context.Context, userID uuid.UUID, year, month int) (fiscal.Figures, error) {
	ivaRec, err := s.calcRepo.FindPeriod(ctx, userID, year, month, model.CalcTypeDefinitiveIVA)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiscal.Figures{}, Coded(CodeNotFound, "no calculation stored for %d-%02d, run the monthly calculation first", year, month)
		}
		return fiscal.Figures{}, fmt.Errorf("failed to fetch IVA record: %w", err)
	}
	isrRec, err := s.calcRepo.FindPeriod(ctx, userID, year, month, model.CalcTypeMonthlyProvisionalISR)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiscal.Figures{}, Coded(CodeNotFound, "no calculation stored for %d-%02d, run the monthly calculation first", year, month)
		}
		return fiscal.Figures{}, fmt.Errorf("failed to fetch ISR record: %w", err)
	}

	return fiscal.Figures{
		Income:   money.FromCents(ivaRec.TotalIncomeCents),
		Expenses: money.FromCents(ivaRec.TotalExpensesCents),
		ISR:      money.FromCents(isrRec.BalanceCents),
		IVA:      money.FromCents(ivaRec.BalanceCents),
	}, nil
}

// declaredFigures merges the per-type SAT rows into one Figures. When both an
// ISR and an IVA row exist for the month, income and expenses come from the
// IVA row and each tax figure from its own row; a missing row leaves its
// fields at zero, which reconciliation then flags.
func declaredFigures(satISR, satIVA *model.SatDeclaration) fiscal.Figures {
	base := satIVA
	if base == nil {
		base = satISR
	}

	fig := fiscal.Figures{
		Income:   money.FromCents(base.DeclaredIncomeCents),
		Expenses: money.FromCents(base.DeclaredExpensesCents),
	}
	if satISR != nil {
		fig.ISR = money.FromCents(satISR.DeclaredISRCents)
	}
	if satIVA != nil {
		fig.IVA = money.FromCents(satIVA.DeclaredIVACents)
	}
	return fig
}

func severityRank(severity string) int {
	switch severity {
	case fiscal.SeverityCritical:
		return 3
	case fiscal.SeverityWarning:
		return 2
	case fiscal.SeverityMinor:
		return 1
	default:
		return 0
	}
}

func parseNonNegative(field, raw string) (decimal.Decimal, error) {
	amount, err := money.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, Coded(CodeValidationError, "%s: %v", field, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, Coded(CodeValidationError, "%s must not be negative", field)
	}
	return amount, nil
}

func toSatDeclarationResponse(d model.SatDeclaration) SatDeclarationResponse {
	return SatDeclarationResponse{
		ID:               d.ID.String(),
		Year:             d.Year,
		Month:            d.Month,
		DeclarationType:  d.DeclarationType,
		DeclaredIncome:   money.Format(money.FromCents(d.DeclaredIncomeCents)),
		DeclaredExpenses: money.Format(money.FromCents(d.DeclaredExpensesCents)),
		DeclaredISR:      money.Format(money.FromCents(d.DeclaredISRCents)),
		DeclaredIVA:      money.Format(money.FromCents(d.DeclaredIVACents)),
		UpdatedAt:        d.UpdatedAt.Format(time.RFC3339),
	}
}
