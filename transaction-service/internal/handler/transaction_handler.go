package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/middleware"
	"github.com/corebank/banking/shared/models"
	"github.com/corebank/banking/transaction-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	RecordTransaction(context.Context, cqrs.RecordTransactionCommand) (*models.LedgerEntry, error)
	DeleteTransaction(context.Context, cqrs.DeleteTransactionCommand) error
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

type RecordTransactionRequest struct {
	AccountID int64            `json:"accountId" validate:"required,gte=1"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Type      models.EntryType `json:"type" validate:"required,oneof=CREDIT DEBIT"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.Amount.IsNegative() {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{{
			Field:   "amount",
			Message: "Value must be greater than or equal to 0",
			Type:    "gte",
		}})
		return
	}

	entry, err := h.commands.RecordTransaction(c.Request.Context(), cqrs.RecordTransactionCommand{
		AccountID: req.AccountID,
		Amount:    *req.Amount,
		Type:      req.Type,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEntry) {
			middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Query("accountId"), 10, 64)
	if err != nil || accountID < 1 {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{{
			Field:   "accountId",
			Message: "Value must be a positive integer",
			Type:    "gte",
		}})
		return
	}

	entries, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{AccountID: accountID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{{
			Field:   "id",
			Message: "Value must be a positive integer",
			Type:    "gte",
		}})
		return
	}

	if err := h.commands.DeleteTransaction(c.Request.Context(), cqrs.DeleteTransactionCommand{TransactionID: id}); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	c.Status(http.StatusNoContent)
}
