package repository

import (
	"context"
	"fmt"
	"time"

	"contable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	Update(ctx context.Context, tx *model.Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int64, error)
	AggregateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.PeriodAggregate, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *transactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Transaction{}).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).First(&tx, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Transaction{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("date desc, created_at desc").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// AggregateRange sums the ledger for a date window. Soft-deleted rows are
// excluded by GORM automatically; personal entries are excluded explicitly so
// only business activity feeds the fiscal figures.
func (r *transactionRepository) AggregateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.PeriodAggregate, error) {
	var row struct {
		TotalIncomeCents   int64
		TotalExpensesCents int64
		ISRDeductibleCents int64
		IVACollectedCents  int64
		IVACreditableCents int64
		ISRWithheldCents   int64
		IVAWithheldCents   int64
	}

	err := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0) AS total_income_cents,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0) AS total_expenses_cents,
			COALESCE(SUM(CASE WHEN type = 'expense' AND is_isr_deductible THEN amount_cents ELSE 0 END), 0) AS isr_deductible_cents,
			COALESCE(SUM(CASE WHEN type = 'income' THEN iva_cents ELSE 0 END), 0) AS iva_collected_cents,
			COALESCE(SUM(CASE WHEN type = 'expense' AND is_iva_deductible THEN iva_cents ELSE 0 END), 0) AS iva_creditable_cents,
			COALESCE(SUM(CASE WHEN type = 'income' THEN isr_withheld_cents ELSE 0 END), 0) AS isr_withheld_cents,
			COALESCE(SUM(CASE WHEN type = 'income' THEN iva_withheld_cents ELSE 0 END), 0) AS iva_withheld_cents`).
		Where("user_id = ? AND is_business = ? AND date >= ? AND date <= ?", userID, true, start, end).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	return &model.PeriodAggregate{
		PeriodStart:        start,
		PeriodEnd:          end,
		TotalIncomeCents:   row.TotalIncomeCents,
		TotalExpensesCents: row.TotalExpensesCents,
		ISRDeductibleCents: row.ISRDeductibleCents,
		IVACollectedCents:  row.IVACollectedCents,
		IVACreditableCents: row.IVACreditableCents,
		ISRWithheldCents:   row.ISRWithheldCents,
		IVAWithheldCents:   row.IVAWithheldCents,
	}, nil
}
