package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FiscalRegime enum constants (SAT regime codes)
const (
	RegimeActividadEmpresarial = "612" // personas físicas con actividad empresarial y profesional
	RegimeRESICO               = "626" // régimen simplificado de confianza
)

// User represents a taxpayer account for logic and database structure
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	RFC          string         `gorm:"type:varchar(13);index" json:"rfc"` // SAT taxpayer id
	FiscalRegime string         `gorm:"type:varchar(10);default:'612'" json:"fiscal_regime"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role         string         `gorm:"type:varchar(50);not null" json:"role"` // admin, user
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
