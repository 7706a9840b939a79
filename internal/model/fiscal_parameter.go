package model

import (
	"time"

	"github.com/google/uuid"
)

// ParameterType enum constants
const (
	ParamTypeISRAnnualBrackets = "isr_annual_brackets"
)

// PeriodType enum constants
const (
	PeriodTypeMonthly = "monthly"
	PeriodTypeAnnual  = "annual"
)

// FiscalParameter stores a versioned fiscal configuration payload (currently
// ISR bracket tariffs) with temporal validity. The row effective for a date D
// is the active one with the latest effective_from <= D whose effective_to is
// NULL or >= D.
type FiscalParameter struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ParameterType string     `gorm:"type:varchar(40);not null;index" json:"parameter_type"`
	PeriodType    string     `gorm:"type:varchar(20);not null" json:"period_type"` // monthly, annual
	Payload       string     `gorm:"type:jsonb;not null" json:"payload"`           // serialized bracket array
	EffectiveFrom time.Time  `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date;index" json:"effective_to"` // nullable = open-ended
	IsActive      bool       `gorm:"default:true;index" json:"is_active"`
	Description   string     `gorm:"type:text" json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
