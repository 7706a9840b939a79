package model

import (
	"time"

	"github.com/google/uuid"
)

// CalculationType enum constants
const (
	CalcTypeMonthlyProvisionalISR = "monthly_provisional_isr"
	CalcTypeDefinitiveIVA         = "definitive_iva"
)

// Calculation status enum constants
const (
	CalcStatusCalculated = "calculated"
	CalcStatusPending    = "pending"
	CalcStatusPaid       = "paid"
	CalcStatusOverdue    = "overdue"
)

// TaxCalculationRecord is one persisted calculation result per
// (user, period, calculation type). Recalculating the same period overwrites
// the row (last write wins); only status transitions mutate it afterwards.
//
// For monthly_provisional_isr the income/expense inputs are year-to-date
// figures; for definitive_iva they are strictly the calendar month's. All
// monetary columns are centavos.
type TaxCalculationRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_calc_period,priority:1" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Year            int    `gorm:"not null;uniqueIndex:idx_calc_period,priority:2" json:"year"`
	Month           int    `gorm:"not null;uniqueIndex:idx_calc_period,priority:3" json:"month"`
	CalculationType string `gorm:"type:varchar(30);not null;uniqueIndex:idx_calc_period,priority:4" json:"calculation_type"`

	// Aggregate inputs
	TotalIncomeCents   int64 `gorm:"default:0" json:"total_income_cents"`
	TotalExpensesCents int64 `gorm:"default:0" json:"total_expenses_cents"`

	// Computed figures
	TaxableIncomeCents int64 `gorm:"default:0" json:"taxable_income_cents"`
	TaxCents           int64 `gorm:"default:0" json:"tax_cents"`
	AlreadyPaidCents   int64 `gorm:"default:0" json:"already_paid_cents"`
	RetainedCents      int64 `gorm:"default:0" json:"retained_cents"`
	BalanceCents       int64 `gorm:"default:0" json:"balance_cents"` // signed for definitive_iva (credit in favor)

	Breakdown string `gorm:"type:jsonb" json:"breakdown"` // serialized calculation detail
	Status    string `gorm:"type:varchar(20);not null;default:'calculated';index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
