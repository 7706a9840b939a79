package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType enum constants
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is one ledger entry. All monetary columns are integer centavos;
// arithmetic happens in decimal at the service layer.
type Transaction struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Type        string    `gorm:"type:varchar(10);not null;index" json:"type"` // income, expense
	AmountCents int64     `gorm:"not null" json:"amount_cents"`                // always positive; Type carries the sign
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(50)" json:"category"`

	// Classification driving the fiscal aggregates
	IsBusiness      bool `gorm:"default:true;index" json:"is_business"`
	IsISRDeductible bool `gorm:"default:false" json:"is_isr_deductible"`
	IsIVADeductible bool `gorm:"default:false" json:"is_iva_deductible"`

	// Tax amounts attached to the entry, in centavos
	IVACents         int64 `gorm:"default:0" json:"iva_cents"`          // IVA charged (income) or paid (expense)
	ISRWithheldCents int64 `gorm:"default:0" json:"isr_withheld_cents"` // ISR retained by the payer
	IVAWithheldCents int64 `gorm:"default:0" json:"iva_withheld_cents"` // IVA retained by the payer

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete; deleted rows never aggregate
}

// PeriodAggregate holds the ledger sums for a date window, scanned straight
// from the aggregate query. Only non-deleted business entries count.
type PeriodAggregate struct {
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
	TotalIncomeCents   int64     `json:"total_income_cents"`
	TotalExpensesCents int64     `json:"total_expenses_cents"`
	ISRDeductibleCents int64     `json:"isr_deductible_cents"`
	IVACollectedCents  int64     `json:"iva_collected_cents"`
	IVACreditableCents int64     `json:"iva_creditable_cents"`
	ISRWithheldCents   int64     `json:"isr_withheld_cents"`
	IVAWithheldCents   int64     `json:"iva_withheld_cents"`
}
