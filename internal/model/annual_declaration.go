package model

import (
	"time"

	"github.com/google/uuid"
)

// DeclarationType enum constants
const (
	DeclarationTypeISR = "isr"
	DeclarationTypeIVA = "iva"
)

// Annual declaration status enum constants
const (
	AnnualStatusCalculated = "calculated"
	AnnualStatusSubmitted  = "submitted"
	AnnualStatusAccepted   = "accepted"
	AnnualStatusRejected   = "rejected"
)

// AnnualDeclaration is the year-end settlement per (user, fiscal year,
// declaration type). Status only moves forward: calculated -> submitted, and
// a submitted or accepted declaration can no longer be deleted or
// recalculated.
type AnnualDeclaration struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_annual_decl,priority:1" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	FiscalYear      int    `gorm:"not null;uniqueIndex:idx_annual_decl,priority:2" json:"fiscal_year"`
	DeclarationType string `gorm:"type:varchar(10);not null;uniqueIndex:idx_annual_decl,priority:3" json:"declaration_type"`

	TotalIncomeCents        int64 `gorm:"default:0" json:"total_income_cents"`
	TotalDeductionsCents    int64 `gorm:"default:0" json:"total_deductions_cents"`
	PersonalDeductionsCents int64 `gorm:"default:0" json:"personal_deductions_cents"`
	TaxableIncomeCents      int64 `gorm:"default:0" json:"taxable_income_cents"`
	ISRAnnualCents          int64 `gorm:"default:0" json:"isr_annual_cents"`
	ProvisionalPaidCents    int64 `gorm:"default:0" json:"provisional_paid_cents"`
	RetainedCents           int64 `gorm:"default:0" json:"retained_cents"`
	FinalBalanceCents       int64 `gorm:"default:0" json:"final_balance_cents"` // signed: negative = refund

	Deductions string `gorm:"type:jsonb" json:"deductions"` // serialized personal-deduction line items
	Status     string `gorm:"type:varchar(20);not null;default:'calculated';index" json:"status"`

	SubmittedAt *time.Time `json:"submitted_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Submittable reports whether the declaration can still be submitted.
func (d *AnnualDeclaration) Submittable() bool {
	return d.Status == AnnualStatusCalculated || d.Status == AnnualStatusRejected
}

// Locked reports whether the declaration may no longer be deleted or
// recalculated.
func (d *AnnualDeclaration) Locked() bool {
	return d.Status == AnnualStatusSubmitted || d.Status == AnnualStatusAccepted
}
