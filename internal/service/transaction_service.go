package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contable/internal/model"
	"contable/internal/repository"
	"contable/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type TransactionRequest struct {
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Amount      string `json:"amount" binding:"required"` // decimal string, pesos
	Date        string `json:"date" binding:"required"`   // YYYY-MM-DD
	Description string `json:"description"`
	Category    string `json:"category"`

	IsBusiness      *bool `json:"is_business"` // defaults to true
	IsISRDeductible bool  `json:"is_isr_deductible"`
	IsIVADeductible bool  `json:"is_iva_deductible"`

	IVA         string `json:"iva"`          // optional, defaults to 0
	ISRWithheld string `json:"isr_withheld"` // optional, incomes only
	IVAWithheld string `json:"iva_withheld"` // optional, incomes only
}

type TransactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`

	IsBusiness      bool `json:"is_business"`
	IsISRDeductible bool `json:"is_isr_deductible"`
	IsIVADeductible bool `json:"is_iva_deductible"`

	IVA         string `json:"iva"`
	ISRWithheld string `json:"isr_withheld"`
	IVAWithheld string `json:"iva_withheld"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

type TransactionService interface {
	Create(ctx context.Context, userID uuid.UUID, req TransactionRequest) (*TransactionResponse, error)
	Update(ctx context.Context, userID uuid.UUID, id string, req TransactionRequest) (*TransactionResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
	GetByID(ctx context.Context, userID uuid.UUID, id string) (*TransactionResponse, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error)
}

type transactionService struct {
	repo     repository.TransactionRepository
	auditSvc AuditService
}

func NewTransactionService(repo repository.TransactionRepository, auditSvc AuditService) TransactionService {
	return &transactionService{repo: repo, auditSvc: auditSvc}
}

// --- Implementation ---

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	tx := model.Transaction{UserID: userID}
	if err := applyTransactionRequest(&tx, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionCreateTransaction,
		tx.ID.String(), tx.Description, req)

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *transactionService) Update(ctx context.Context, userID uuid.UUID, id string, req TransactionRequest) (*TransactionResponse, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, Coded(CodeValidationError, "invalid transaction id: %v", err)
	}

	tx, err := s.repo.FindByID(ctx, userID, txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Coded(CodeNotFound, "transaction not found")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if err := applyTransactionRequest(tx, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionUpdateTransaction,
		tx.ID.String(), tx.Description, req)

	resp := toTransactionResponse(*tx)
	return &resp, nil
}

func (s *transactionService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	txID, err := uuid.Parse(id)
	if err != nil {
		return Coded(CodeValidationError, "invalid transaction id: %v", err)
	}

	if _, err := s.repo.FindByID(ctx, userID, txID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Coded(CodeNotFound, "transaction not found")
		}
		return fmt.Errorf("failed to fetch transaction: %w", err)
	}

	if err := s.repo.Delete(ctx, userID, txID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.auditSvc.Write(ctx, userID.String(), model.ActionDeleteTransaction, id, "", nil)
	return nil
}

func (s *transactionService) GetByID(ctx context.Context, userID uuid.UUID, id string) (*TransactionResponse, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, Coded(CodeValidationError, "invalid transaction id: %v", err)
	}

	tx, err := s.repo.FindByID(ctx, userID, txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Coded(CodeNotFound, "transaction not found")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	resp := toTransactionResponse(*tx)
	return &resp, nil
}

func (s *transactionService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error) {
	txs, total, err := s.repo.List(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	res := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		res = append(res, toTransactionResponse(tx))
	}
	return res, total, nil
}

// --- Helpers ---

// applyTransactionRequest validates the request and maps it onto the model.
// Amounts arrive as decimal strings and are stored as centavos.
func applyTransactionRequest(tx *model.Transaction, req TransactionRequest) error {
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return Coded(CodeValidationError, "amount: %v", err)
	}
	if !amount.IsPositive() {
		return Coded(CodeValidationError, "amount must be positive")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return Coded(CodeValidationError, "date must be YYYY-MM-DD: %v", err)
	}

	iva, err := parseOptionalAmount("iva", req.IVA)
	if err != nil {
		return err
	}
	isrWithheld, err := parseOptionalAmount("isr_withheld", req.ISRWithheld)
	if err != nil {
		return err
	}
	ivaWithheld, err := parseOptionalAmount("iva_withheld", req.IVAWithheld)
	if err != nil {
		return err
	}

	if req.Type == model.TransactionTypeExpense && (isrWithheld.IsPositive() || ivaWithheld.IsPositive()) {
		return Coded(CodeValidationError, "withholdings only apply to income entries")
	}

	tx.Type = req.Type
	tx.AmountCents = money.ToCents(amount)
	tx.Date = date
	tx.Description = req.Description
	tx.Category = req.Category
	tx.IsBusiness = req.IsBusiness == nil || *req.IsBusiness
	tx.IsISRDeductible = req.IsISRDeductible
	tx.IsIVADeductible = req.IsIVADeductible
	tx.IVACents = money.ToCents(iva)
	tx.ISRWithheldCents = money.ToCents(isrWithheld)
	tx.IVAWithheldCents = money.ToCents(ivaWithheld)
	return nil
}

func parseOptionalAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	parsed, err := money.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, Coded(CodeValidationError, "%s: %v", field, err)
	}
	if parsed.IsNegative() {
		return decimal.Zero, Coded(CodeValidationError, "%s must not be negative", field)
	}
	return parsed, nil
}

func toTransactionResponse(tx model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID.String(),
		Type:            tx.Type,
		Amount:          money.Format(money.FromCents(tx.AmountCents)),
		Date:            tx.Date.Format("2006-01-02"),
		Description:     tx.Description,
		Category:        tx.Category,
		IsBusiness:      tx.IsBusiness,
		IsISRDeductible: tx.IsISRDeductible,
		IsIVADeductible: tx.IsIVADeductible,
		IVA:             money.Format(money.FromCents(tx.IVACents)),
		ISRWithheld:     money.Format(money.FromCents(tx.ISRWithheldCents)),
		IVAWithheld:     money.Format(money.FromCents(tx.IVAWithheldCents)),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       tx.UpdatedAt.Format(time.RFC3339),
	}
}
