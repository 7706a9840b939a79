package service

import (
	"testing"

	"contable/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransactionRequest(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name    string
		req     TransactionRequest
		check   func(t *testing.T, tx model.Transaction)
		wantErr string
	}{
		{
			name: "income with iva and withholdings",
			req: TransactionRequest{
				Type:        model.TransactionTypeIncome,
				Amount:      "10000",
				Date:        "2025-03-15",
				IVA:         "1600",
				ISRWithheld: "1000",
				IVAWithheld: "1066.67",
			},
			check: func(t *testing.T, tx model.Transaction) {
				assert.Equal(t, int64(1000000), tx.AmountCents)
				assert.Equal(t, int64(160000), tx.IVACents)
				assert.Equal(t, int64(100000), tx.ISRWithheldCents)
				assert.Equal(t, int64(106667), tx.IVAWithheldCents)
				assert.True(t, tx.IsBusiness)
			},
		},
		{
			name: "personal expense keeps is_business false",
			req: TransactionRequest{
				Type:       model.TransactionTypeExpense,
				Amount:     "250.75",
				Date:       "2025-03-20",
				IsBusiness: boolPtr(false),
			},
			check: func(t *testing.T, tx model.Transaction) {
				assert.Equal(t, int64(25075), tx.AmountCents)
				assert.False(t, tx.IsBusiness)
				assert.Zero(t, tx.IVACents)
			},
		},
		{
			name: "negative amount rejected",
			req: TransactionRequest{
				Type:   model.TransactionTypeIncome,
				Amount: "-50",
				Date:   "2025-03-15",
			},
			wantErr: "amount must be positive",
		},
		{
			name: "bad date rejected",
			req: TransactionRequest{
				Type:   model.TransactionTypeIncome,
				Amount: "100",
				Date:   "15/03/2025",
			},
			wantErr: "date must be YYYY-MM-DD",
		},
		{
			name: "withholdings rejected on expenses",
			req: TransactionRequest{
				Type:        model.TransactionTypeExpense,
				Amount:      "100",
				Date:        "2025-03-15",
				ISRWithheld: "10",
			},
			wantErr: "withholdings only apply to income entries",
		},
		{
			name: "three decimal places rejected",
			req: TransactionRequest{
				Type:   model.TransactionTypeIncome,
				Amount: "100.123",
				Date:   "2025-03-15",
			},
			wantErr: "amount:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx model.Transaction
			err := applyTransactionRequest(&tx, tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, CodeValidationError, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, tx)
		})
	}
}
