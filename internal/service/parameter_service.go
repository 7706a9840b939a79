package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"contable/internal/fiscal"
	"contable/internal/model"
	"contable/internal/repository"
	"contable/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateParameterRequest struct {
	ParameterType string `json:"parameter_type" binding:"required,oneof=isr_annual_brackets"`
	PeriodType    string `json:"period_type" binding:"required,oneof=monthly annual"`
	Payload       string `json:"payload" binding:"required"`        // JSON bracket array
	EffectiveFrom string `json:"effective_from" binding:"required"` // YYYY-MM-DD
	EffectiveTo   string `json:"effective_to"`                      // YYYY-MM-DD, nullable
	Description   string `json:"description"`
}

type UpdateParameterRequest struct {
	ParameterType string `json:"parameter_type" binding:"required,oneof=isr_annual_brackets"`
	PeriodType    string `json:"period_type" binding:"required,oneof=monthly annual"`
	Payload       string `json:"payload" binding:"required"`
	EffectiveFrom string `json:"effective_from" binding:"required"`
	EffectiveTo   string `json:"effective_to"`
	IsActive      *bool  `json:"is_active"`
	Description   string `json:"description"`
}

type ParameterResponse struct {
	ID            string  `json:"id"`
	ParameterType string  `json:"parameter_type"`
	PeriodType    string  `json:"period_type"`
	Payload       string  `json:"payload"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	IsActive      bool    `json:"is_active"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

type ParameterService interface {
	ListParameters(ctx context.Context, page, limit int) ([]ParameterResponse, int64, error)
	CreateParameter(ctx context.Context, req CreateParameterRequest, userID string) (ParameterResponse, error)
	UpdateParameter(ctx context.Context, id string, req UpdateParameterRequest, userID string) (ParameterResponse, error)
	DeleteParameter(ctx context.Context, id string, userID string) error

	// ResolveBracketTable returns the tariff effective on targetDate. A
	// missing or malformed configuration row falls back to the built-in
	// table: a calculation must always produce a number.
	ResolveBracketTable(ctx context.Context, parameterType string, targetDate time.Time) (fiscal.BracketTable, error)
}

type parameterService struct {
	repo     repository.FiscalParameterRepository
	auditSvc AuditService
	hub      *websocket.Hub
}

func NewParameterService(repo repository.FiscalParameterRepository, auditSvc AuditService, hub *websocket.Hub) ParameterService {
	return &parameterService{repo: repo, auditSvc: auditSvc, hub: hub}
}

// --- Implementation ---

func (s *parameterService) ListParameters(ctx context.Context, page, limit int) ([]ParameterResponse, int64, error) {
	params, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch fiscal parameters: %w", err)
	}

	res := make([]ParameterResponse, 0, len(params))
	for _, p := range params {
		res = append(res, toParameterResponse(p))
	}
	return res, total, nil
}

func (s *parameterService) CreateParameter(ctx context.Context, req CreateParameterRequest, userID string) (ParameterResponse, error) {
	effectiveFrom, effectiveTo, err := parseEffectiveRange(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return ParameterResponse{}, err
	}

	// The payload is parsed once at the boundary; structurally broken tables
	// never reach storage.
	if _, err := fiscal.ParseBracketTable([]byte(req.Payload)); err != nil {
		return ParameterResponse{}, Coded(CodeValidationError, "invalid bracket payload: %v", err)
	}

	if err := s.checkOverlap(ctx, req.ParameterType, effectiveFrom, effectiveTo, nil); err != nil {
		return ParameterResponse{}, err
	}

	param := model.FiscalParameter{
		ParameterType: req.ParameterType,
		PeriodType:    req.PeriodType,
		Payload:       req.Payload,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		IsActive:      true,
		Description:   req.Description,
	}

	if err := s.repo.Create(ctx, &param); err != nil {
		return ParameterResponse{}, fmt.Errorf("failed to create fiscal parameter: %w", err)
	}

	s.auditSvc.Write(ctx, userID, model.ActionCreateFiscalParameter, param.ID.String(), param.ParameterType, req)
	s.broadcastChange(param.ParameterType, "created")

	return toParameterResponse(param), nil
}

func (s *parameterService) UpdateParameter(ctx context.Context, id string, req UpdateParameterRequest, userID string) (ParameterResponse, error) {
	paramID, err := uuid.Parse(id)
	if err != nil {
		return ParameterResponse{}, Coded(CodeValidationError, "invalid fiscal parameter id: %v", err)
	}

	param, err := s.repo.FindByID(ctx, paramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ParameterResponse{}, Coded(CodeNotFound, "fiscal parameter not found")
		}
		return ParameterResponse{}, fmt.Errorf("failed to fetch fiscal parameter: %w", err)
	}

	effectiveFrom, effectiveTo, err := parseEffectiveRange(req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return ParameterResponse{}, err
	}

	if _, err := fiscal.ParseBracketTable([]byte(req.Payload)); err != nil {
		return ParameterResponse{}, Coded(CodeValidationError, "invalid bracket payload: %v", err)
	}

	if err := s.checkOverlap(ctx, req.ParameterType, effectiveFrom, effectiveTo, &paramID); err != nil {
		return ParameterResponse{}, err
	}

	param.ParameterType = req.ParameterType
	param.PeriodType = req.PeriodType
	param.Payload = req.Payload
	param.EffectiveFrom = effectiveFrom
	param.EffectiveTo = effectiveTo
	param.Description = req.Description
	if req.IsActive != nil {
		param.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, param); err != nil {
		return ParameterResponse{}, fmt.Errorf("failed to update fiscal parameter: %w", err)
	}

	s.auditSvc.Write(ctx, userID, model.ActionUpdateFiscalParameter, param.ID.String(), param.ParameterType, req)
	s.broadcastChange(param.ParameterType, "updated")

	return toParameterResponse(*param), nil
}

func (s *parameterService) DeleteParameter(ctx context.Context, id string, userID string) error {
	paramID, err := uuid.Parse(id)
	if err != nil {
		return Coded(CodeValidationError, "invalid fiscal parameter id: %v", err)
	}

	param, err := s.repo.FindByID(ctx, paramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Coded(CodeNotFound, "fiscal parameter not found")
		}
		return fmt.Errorf("failed to fetch fiscal parameter: %w", err)
	}

	if err := s.repo.Delete(ctx, paramID); err != nil {
		return fmt.Errorf("failed to delete fiscal parameter: %w", err)
	}

	s.auditSvc.Write(ctx, userID, model.ActionDeleteFiscalParameter, param.ID.String(), param.ParameterType, map[string]string{"deleted_id": id})
	s.broadcastChange(param.ParameterType, "deleted")

	return nil
}

func (s *parameterService) ResolveBracketTable(ctx context.Context, parameterType string, targetDate time.Time) (fiscal.BracketTable, error) {
	param, err := s.repo.FindEffective(ctx, parameterType, targetDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiscal.DefaultAnnualISRTable(), nil
		}
		return nil, fmt.Errorf("failed to query fiscal parameter: %w", err)
	}

	table, err := fiscal.ParseBracketTable([]byte(param.Payload))
	if err != nil {
		// A corrupt configuration row must not block calculations.
		log.Printf("fiscal parameter %s has unusable payload, using built-in table: %v", param.ID, err)
		return fiscal.DefaultAnnualISRTable(), nil
	}
	return table, nil
}

// --- Helpers ---

// broadcastChange tells connected clients their cached tariffs are stale.
func (s *parameterService) broadcastChange(parameterType, change string) {
	s.hub.BroadcastEvent(websocket.EventParameterChanged, map[string]interface{}{
		"parameter_type": parameterType, "change": change,
	})
}

func parseEffectiveRange(fromStr, toStr string) (time.Time, *time.Time, error) {
	effectiveFrom, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, nil, Coded(CodeValidationError, "invalid effective_from date format (expected YYYY-MM-DD): %v", err)
	}

	var effectiveTo *time.Time
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, nil, Coded(CodeValidationError, "invalid effective_to date format (expected YYYY-MM-DD): %v", err)
		}
		effectiveTo = &t
	}

	return effectiveFrom, effectiveTo, nil
}

func (s *parameterService) checkOverlap(ctx context.Context, parameterType string, from time.Time, to *time.Time, excludeID *uuid.UUID) error {
	count, err := s.repo.FindOverlapping(ctx, parameterType, from, to, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlap: %w", err)
	}
	if count > 0 {
		return Coded(CodeConflict, "an active parameter of type '%s' already exists with overlapping effective dates", parameterType)
	}
	return nil
}

func toParameterResponse(p model.FiscalParameter) ParameterResponse {
	resp := ParameterResponse{
		ID:            p.ID.String(),
		ParameterType: p.ParameterType,
		PeriodType:    p.PeriodType,
		Payload:       p.Payload,
		EffectiveFrom: p.EffectiveFrom.Format("2006-01-02"),
		IsActive:      p.IsActive,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.EffectiveTo != nil {
		s := p.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &s
	}
	return resp
}
