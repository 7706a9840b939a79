package repository

import (
	"context"

	"contable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SatDeclarationRepository interface {
	// Upsert replaces the declared figures for the (user, year, month, type)
	// key; SAT declarations are user-entered snapshots, re-entry wins whole.
	Upsert(ctx context.Context, decl *model.SatDeclaration) error
	FindPeriod(ctx context.Context, userID uuid.UUID, year, month int, declType string) (*model.SatDeclaration, error)
	ListYear(ctx context.Context, userID uuid.UUID, year int) ([]model.SatDeclaration, error)
}

type satDeclarationRepository struct {
	db *gorm.DB
}

func NewSatDeclarationRepository(db *gorm.DB) SatDeclarationRepository {
	return &satDeclarationRepository{db: db}
}

func (r *satDeclarationRepository) Upsert(ctx context.Context, decl *model.SatDeclaration) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "year"}, {Name: "month"}, {Name: "declaration_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"declared_income_cents", "declared_expenses_cents",
			"declared_isr_cents", "declared_iva_cents", "updated_at",
		}),
	}).Create(decl).Error
}

func (r *satDeclarationRepository) FindPeriod(ctx context.Context, userID uuid.UUID, year, month int, declType string) (*model.SatDeclaration, error) {
	var decl model.SatDeclaration
	if err := GetDB(ctx, r.db).
		First(&decl, "user_id = ? AND year = ? AND month = ? AND declaration_type = ?", userID, year, month, declType).Error; err != nil {
		return nil, err
	}
	return &decl, nil
}

func (r *satDeclarationRepository) ListYear(ctx context.Context, userID uuid.UUID, year int) ([]model.SatDeclaration, error) {
	var decls []model.SatDeclaration
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND year = ?", userID, year).
		Order("month asc").
		Find(&decls).Error; err != nil {
		return nil, err
	}
	return decls, nil
}
