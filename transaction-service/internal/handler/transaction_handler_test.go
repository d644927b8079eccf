package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/models"
	"github.com/corebank/banking/transaction-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ---- mock implementations ----

type mockTransactionCommander struct {
	recordFn func(cqrs.RecordTransactionCommand) (*models.LedgerEntry, error)
	deleteFn func(cqrs.DeleteTransactionCommand) error
}

func (m *mockTransactionCommander) RecordTransaction(_ context.Context, cmd cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) {
	if m.recordFn != nil {
		return m.recordFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTransactionCommander) DeleteTransaction(_ context.Context, cmd cqrs.DeleteTransactionCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockTransactionQuerier struct {
	listFn func(cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error)
}

func (m *mockTransactionQuerier) ListTransactions(_ context.Context, q cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newTxTestRouter(cmds TransactionCommander, qrys TransactionQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTransactionHandler(cmds, qrys)
	v1 := r.Group("/api/bank/v1/transaction")
	v1.PUT("", h.RecordTransaction)
	v1.GET("", h.ListTransactions)
	v1.DELETE("/:id", h.DeleteTransaction)
	return r
}

func txDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var aTestEntry = &models.LedgerEntry{
	ID: 21, AccountID: 4, Amount: decimal.NewFromInt(100),
	Type: models.EntryTypeCredit, TransactedAt: time.Now(),
}

// ---- tests ----

func TestRecordTransaction(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		recordFn       func(cqrs.RecordTransactionCommand) (*models.LedgerEntry, error)
		expectedStatus int
	}{
		{
			name: "success - record credit",
			body: map[string]interface{}{"accountId": 4, "amount": 100, "type": "CREDIT"},
			recordFn: func(cmd cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) {
				if cmd.Type != models.EntryTypeCredit || !cmd.Amount.Equal(decimal.NewFromInt(100)) {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return aTestEntry, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "success - zero amount",
			body:           map[string]interface{}{"accountId": 4, "amount": 0, "type": "DEBIT"},
			recordFn:       func(cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) { return aTestEntry, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing fields",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unknown type",
			body:           map[string]interface{}{"accountId": 4, "amount": 1, "type": "REFUND"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - negative amount",
			body:           map[string]interface{}{"accountId": 4, "amount": -1, "type": "CREDIT"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - rejected by store",
			body: map[string]interface{}{"accountId": 4, "amount": 1, "type": "CREDIT"},
			recordFn: func(cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) {
				return nil, fmt.Errorf("%w: check violation", repository.ErrInvalidEntry)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "internal error - store down",
			body:           map[string]interface{}{"accountId": 4, "amount": 1, "type": "CREDIT"},
			recordFn:       func(cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) { return nil, fmt.Errorf("conn refused") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{recordFn: tt.recordFn}, &mockTransactionQuerier{})
			w := txDoRequest(router, http.MethodPut, "/api/bank/v1/transaction", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListTransactions(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		listFn         func(cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success - entries",
			query:          "?accountId=4",
			listFn:         func(cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error) { return []models.LedgerEntry{*aTestEntry}, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "success - no entries",
			query:          "?accountId=5",
			listFn:         func(cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error) { return []models.LedgerEntry{}, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   "[]",
		},
		{
			name:           "bad request - missing account id",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - non numeric account id",
			query:          "?accountId=x",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "internal error",
			query:          "?accountId=4",
			listFn:         func(cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error) { return nil, fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{}, &mockTransactionQuerier{listFn: tt.listFn})
			w := txDoRequest(router, http.MethodGet, "/api/bank/v1/transaction"+tt.query, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBody != "" && w.Body.String() != tt.expectedBody {
				t.Errorf("[%s] expected body %s got %s", tt.name, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		deleteFn       func(cqrs.DeleteTransactionCommand) error
		expectedStatus int
	}{
		{
			name:           "success - delete entry",
			id:             "21",
			deleteFn:       func(cqrs.DeleteTransactionCommand) error { return nil },
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "not found - unknown entry",
			id:   "99",
			deleteFn: func(cmd cqrs.DeleteTransactionCommand) error {
				return fmt.Errorf("transaction %d: %w", cmd.TransactionID, repository.ErrTransactionNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - invalid id",
			id:             "abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "internal error",
			id:             "21",
			deleteFn:       func(cqrs.DeleteTransactionCommand) error { return fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTxTestRouter(&mockTransactionCommander{deleteFn: tt.deleteFn}, &mockTransactionQuerier{})
			w := txDoRequest(router, http.MethodDelete, "/api/bank/v1/transaction/"+tt.id, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
