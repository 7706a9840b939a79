package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"contable/internal/fiscal"
	"contable/internal/model"
	"contable/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Stubs ---

type annualRepoStub struct {
	repository.AnnualDeclarationRepository
	findYear func() (*model.AnnualDeclaration, error)
	upserted []*model.AnnualDeclaration
}

func (s *annualRepoStub) FindYear(ctx context.Context, userID uuid.UUID, fiscalYear int, declType string) (*model.AnnualDeclaration, error) {
	return s.findYear()
}

func (s *annualRepoStub) Upsert(ctx context.Context, decl *model.AnnualDeclaration) error {
	s.upserted = append(s.upserted, decl)
	return nil
}

type txRepoStub struct {
	repository.TransactionRepository
	agg model.PeriodAggregate
}

func (s *txRepoStub) AggregateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.PeriodAggregate, error) {
	agg := s.agg
	return &agg, nil
}

type calcRepoStub struct {
	repository.TaxCalculationRepository
}

func (s *calcRepoStub) ListYear(ctx context.Context, userID uuid.UUID, year int, calcType string) ([]model.TaxCalculationRecord, error) {
	return nil, nil
}

type paramsStub struct {
	ParameterService
}

func (s *paramsStub) ResolveBracketTable(ctx context.Context, parameterType string, targetDate time.Time) (fiscal.BracketTable, error) {
	return fiscal.DefaultAnnualISRTable(), nil
}

type auditStub struct{}

func (auditStub) Write(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
}

func (auditStub) List(ctx context.Context, page, limit int, action string) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}

func newAnnualServiceForTest(annualRepo *annualRepoStub, agg model.PeriodAggregate) AnnualService {
	return NewAnnualService(
		&txRepoStub{agg: agg},
		&calcRepoStub{},
		annualRepo,
		&paramsStub{},
		auditStub{},
		nil,
	)
}

// --- Tests ---

func TestAnnualCalculateStoresRetainedCents(t *testing.T) {
	annualRepo := &annualRepoStub{
		findYear: func() (*model.AnnualDeclaration, error) { return nil, gorm.ErrRecordNotFound },
	}
	svc := newAnnualServiceForTest(annualRepo, model.PeriodAggregate{
		TotalIncomeCents:   50000000,
		ISRDeductibleCents: 12000000,
		ISRWithheldCents:   150000,
	})

	resp, err := svc.Calculate(context.Background(), uuid.New(), AnnualDeclarationRequest{Year: 2025})
	require.NoError(t, err)
	require.Len(t, annualRepo.upserted, 1)

	decl := annualRepo.upserted[0]
	assert.Equal(t, int64(150000), decl.RetainedCents)
	assert.Equal(t, "1500.00", resp.Retained)
}

func TestAnnualCalculateLockGuard(t *testing.T) {
	userID := uuid.New()

	t.Run("missing declaration proceeds", func(t *testing.T) {
		annualRepo := &annualRepoStub{
			findYear: func() (*model.AnnualDeclaration, error) { return nil, gorm.ErrRecordNotFound },
		}
		svc := newAnnualServiceForTest(annualRepo, model.PeriodAggregate{TotalIncomeCents: 10000000})

		_, err := svc.Calculate(context.Background(), userID, AnnualDeclarationRequest{Year: 2025})
		require.NoError(t, err)
		assert.Len(t, annualRepo.upserted, 1)
	})

	t.Run("submitted declaration rejects recalculation", func(t *testing.T) {
		annualRepo := &annualRepoStub{
			findYear: func() (*model.AnnualDeclaration, error) {
				return &model.AnnualDeclaration{Status: model.AnnualStatusSubmitted}, nil
			},
		}
		svc := newAnnualServiceForTest(annualRepo, model.PeriodAggregate{TotalIncomeCents: 10000000})

		_, err := svc.Calculate(context.Background(), userID, AnnualDeclarationRequest{Year: 2025})
		require.Error(t, err)
		assert.Equal(t, CodeConflict, ErrorCode(err))
		assert.Empty(t, annualRepo.upserted)
	})

	t.Run("read failure aborts instead of overwriting", func(t *testing.T) {
		annualRepo := &annualRepoStub{
			findYear: func() (*model.AnnualDeclaration, error) {
				return nil, errors.New("connection reset by peer")
			},
		}
		svc := newAnnualServiceForTest(annualRepo, model.PeriodAggregate{TotalIncomeCents: 10000000})

		_, err := svc.Calculate(context.Background(), userID, AnnualDeclarationRequest{Year: 2025})
		require.Error(t, err)
		assert.Empty(t, annualRepo.upserted)
	})
}

func TestSumPersonalDeductions(t *testing.T) {
	tests := []struct {
		name    string
		items   []PersonalDeductionItem
		want    string
		wantErr string
	}{
		{
			name: "sums recognized categories",
			items: []PersonalDeductionItem{
				{Type: "medical", Amount: "1200.50"},
				{Type: "tuition", Amount: "8000"},
			},
			want: "9200.50",
		},
		{
			name:  "empty list is zero",
			items: nil,
			want:  "0.00",
		},
		{
			name: "unknown category rejected",
			items: []PersonalDeductionItem{
				{Type: "groceries", Amount: "100"},
			},
			wantErr: `deduction 0: unknown type "groceries"`,
		},
		{
			name: "zero amount rejected",
			items: []PersonalDeductionItem{
				{Type: "medical", Amount: "500"},
				{Type: "funeral", Amount: "0"},
			},
			wantErr: "deduction 1: amount must be positive",
		},
		{
			name: "malformed amount rejected",
			items: []PersonalDeductionItem{
				{Type: "donations", Amount: "12.345"},
			},
			wantErr: "deduction 0:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := sumPersonalDeductions(tt.items)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, CodeValidationError, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total.StringFixed(2))
		})
	}
}
