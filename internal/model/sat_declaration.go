package model

import (
	"time"

	"github.com/google/uuid"
)

// SatDeclaration holds the figures the taxpayer actually filed with SAT for
// a month, entered by hand and upserted on the (user, year, month, type) key.
// These are immutable inputs to reconciliation: the engine never edits them,
// only replaces the whole row on re-entry.
type SatDeclaration struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sat_decl,priority:1" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Year            int    `gorm:"not null;uniqueIndex:idx_sat_decl,priority:2" json:"year"`
	Month           int    `gorm:"not null;uniqueIndex:idx_sat_decl,priority:3" json:"month"`
	DeclarationType string `gorm:"type:varchar(10);not null;uniqueIndex:idx_sat_decl,priority:4" json:"declaration_type"`

	DeclaredIncomeCents   int64 `gorm:"default:0" json:"declared_income_cents"`
	DeclaredExpensesCents int64 `gorm:"default:0" json:"declared_expenses_cents"`
	DeclaredISRCents      int64 `gorm:"default:0" json:"declared_isr_cents"`
	DeclaredIVACents      int64 `gorm:"default:0" json:"declared_iva_cents"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
