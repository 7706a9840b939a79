package repository

import (
	"context"

	"contable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaxCalculationRepository interface {
	// Upsert writes a calculation result, replacing any previous run for the
	// same (user, year, month, type). Concurrent recalculations of one period
	// resolve as last write wins.
	Upsert(ctx context.Context, record *model.TaxCalculationRecord) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.TaxCalculationRecord, error)
	FindPeriod(ctx context.Context, userID uuid.UUID, year, month int, calcType string) (*model.TaxCalculationRecord, error)
	ListYear(ctx context.Context, userID uuid.UUID, year int, calcType string) ([]model.TaxCalculationRecord, error)
	ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.TaxCalculationRecord, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type taxCalculationRepository struct {
	db *gorm.DB
}

func NewTaxCalculationRepository(db *gorm.DB) TaxCalculationRepository {
	return &taxCalculationRepository{db: db}
}

func (r *taxCalculationRepository) Upsert(ctx context.Context, record *model.TaxCalculationRecord) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "year"}, {Name: "month"}, {Name: "calculation_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_income_cents", "total_expenses_cents", "taxable_income_cents",
			"tax_cents", "already_paid_cents", "retained_cents", "balance_cents",
			"breakdown", "status", "updated_at",
		}),
	}).Create(record).Error
}

func (r *taxCalculationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.TaxCalculationRecord, error) {
	var record model.TaxCalculationRecord
	if err := GetDB(ctx, r.db).First(&record, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *taxCalculationRepository) FindPeriod(ctx context.Context, userID uuid.UUID, year, month int, calcType string) (*model.TaxCalculationRecord, error) {
	var record model.TaxCalculationRecord
	if err := GetDB(ctx, r.db).
		First(&record, "user_id = ? AND year = ? AND month = ? AND calculation_type = ?", userID, year, month, calcType).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *taxCalculationRepository) ListYear(ctx context.Context, userID uuid.UUID, year int, calcType string) ([]model.TaxCalculationRecord, error) {
	var records []model.TaxCalculationRecord
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND year = ? AND calculation_type = ?", userID, year, calcType).
		Order("month asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *taxCalculationRepository) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.TaxCalculationRecord, error) {
	var records []model.TaxCalculationRecord
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND year = ?", userID, year).
		Order("month asc, calculation_type asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *taxCalculationRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error {
	res := GetDB(ctx, r.db).Model(&model.TaxCalculationRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a calculation record outright. Records carry no dependent
// rows, so this is a plain hard delete triggered only by explicit user action.
func (r *taxCalculationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&model.TaxCalculationRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
