package repository

import (
	"context"
	"time"

	"contable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FiscalParameterRepository interface {
	Create(ctx context.Context, param *model.FiscalParameter) error
	Update(ctx context.Context, param *model.FiscalParameter) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FiscalParameter, error)
	List(ctx context.Context, page, limit int) ([]model.FiscalParameter, int64, error)
	FindEffective(ctx context.Context, parameterType string, targetDate time.Time) (*model.FiscalParameter, error)
	FindOverlapping(ctx context.Context, parameterType string, from time.Time, to *time.Time, excludeID *uuid.UUID) (int64, error)
}

type fiscalParameterRepository struct {
	db *gorm.DB
}

func NewFiscalParameterRepository(db *gorm.DB) FiscalParameterRepository {
	return &fiscalParameterRepository{db: db}
}

func (r *fiscalParameterRepository) Create(ctx context.Context, param *model.FiscalParameter) error {
	return GetDB(ctx, r.db).Create(param).Error
}

func (r *fiscalParameterRepository) Update(ctx context.Context, param *model.FiscalParameter) error {
	return GetDB(ctx, r.db).Save(param).Error
}

func (r *fiscalParameterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.FiscalParameter{}).Error
}

func (r *fiscalParameterRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FiscalParameter, error) {
	var param model.FiscalParameter
	if err := GetDB(ctx, r.db).First(&param, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

func (r *fiscalParameterRepository) List(ctx context.Context, page, limit int) ([]model.FiscalParameter, int64, error) {
	var params []model.FiscalParameter
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.FiscalParameter{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("effective_from desc").Offset(offset).Limit(limit).Find(&params).Error; err != nil {
		return nil, 0, err
	}

	return params, total, nil
}

// FindEffective resolves the parameter row in force on targetDate: the active
// row of the matching type with the latest effective_from <= targetDate whose
// effective_to is NULL or >= targetDate.
func (r *fiscalParameterRepository) FindEffective(ctx context.Context, parameterType string, targetDate time.Time) (*model.FiscalParameter, error) {
	var param model.FiscalParameter
	if err := GetDB(ctx, r.db).
		Where("parameter_type = ? AND is_active = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)",
			parameterType, true, targetDate, targetDate).
		Order("effective_from DESC").
		First(&param).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

func (r *fiscalParameterRepository) FindOverlapping(ctx context.Context, parameterType string, from time.Time, to *time.Time, excludeID *uuid.UUID) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.FiscalParameter{}).
		Where("parameter_type = ? AND is_active = ?", parameterType, true)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	if to != nil {
		// New row has end date: overlap if existing.from <= new.to AND (existing.to IS NULL OR existing.to >= new.from)
		query = query.Where("effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)", *to, from)
	} else {
		// New row has no end date: overlap if (existing.to IS NULL OR existing.to >= new.from)
		query = query.Where("(effective_to IS NULL OR effective_to >= ?)", from)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
