package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTransaction = "CREATE_TRANSACTION"
	ActionUpdateTransaction = "UPDATE_TRANSACTION"
	ActionDeleteTransaction = "DELETE_TRANSACTION"

	ActionCreateFiscalParameter = "CREATE_FISCAL_PARAMETER"
	ActionUpdateFiscalParameter = "UPDATE_FISCAL_PARAMETER"
	ActionDeleteFiscalParameter = "DELETE_FISCAL_PARAMETER"

	ActionRunMonthlyCalculation   = "RUN_MONTHLY_CALCULATION"
	ActionDeleteCalculation       = "DELETE_CALCULATION"
	ActionRunAnnualDeclaration    = "RUN_ANNUAL_DECLARATION"
	ActionSubmitAnnualDeclaration = "SUBMIT_ANNUAL_DECLARATION"
	ActionUpsertSatDeclaration    = "UPSERT_SAT_DECLARATION"
	ActionRunReconciliation       = "RUN_RECONCILIATION"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
