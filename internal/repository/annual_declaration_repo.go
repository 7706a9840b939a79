package repository

import (
	"context"

	"contable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnualDeclarationRepository interface {
	Upsert(ctx context.Context, decl *model.AnnualDeclaration) error
	Update(ctx context.Context, decl *model.AnnualDeclaration) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.AnnualDeclaration, error)
	FindYear(ctx context.Context, userID uuid.UUID, fiscalYear int, declType string) (*model.AnnualDeclaration, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.AnnualDeclaration, error)
}

type annualDeclarationRepository struct {
	db *gorm.DB
}

func NewAnnualDeclarationRepository(db *gorm.DB) AnnualDeclarationRepository {
	return &annualDeclarationRepository{db: db}
}

func (r *annualDeclarationRepository) Upsert(ctx context.Context, decl *model.AnnualDeclaration) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "fiscal_year"}, {Name: "declaration_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_income_cents", "total_deductions_cents", "personal_deductions_cents",
			"taxable_income_cents", "isr_annual_cents", "provisional_paid_cents",
			"retained_cents", "final_balance_cents", "deductions", "status", "updated_at",
		}),
	}).Create(decl).Error
}

func (r *annualDeclarationRepository) Update(ctx context.Context, decl *model.AnnualDeclaration) error {
	return GetDB(ctx, r.db).Save(decl).Error
}

func (r *annualDeclarationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.AnnualDeclaration, error) {
	var decl model.AnnualDeclaration
	if err := GetDB(ctx, r.db).First(&decl, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &decl, nil
}

func (r *annualDeclarationRepository) FindYear(ctx context.Context, userID uuid.UUID, fiscalYear int, declType string) (*model.AnnualDeclaration, error) {
	var decl model.AnnualDeclaration
	if err := GetDB(ctx, r.db).
		First(&decl, "user_id = ? AND fiscal_year = ? AND declaration_type = ?", userID, fiscalYear, declType).Error; err != nil {
		return nil, err
	}
	return &decl, nil
}

func (r *annualDeclarationRepository) List(ctx context.Context, userID uuid.UUID) ([]model.AnnualDeclaration, error) {
	var decls []model.AnnualDeclaration
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("fiscal_year desc").
		Find(&decls).Error; err != nil {
		return nil, err
	}
	return decls, nil
}
