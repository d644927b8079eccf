package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/middleware"
	"github.com/corebank/banking/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	CodeAccountCreationRolledBack = "ACCOUNT_CREATION_ROLLED_BACK"
	CodeAccountOrphaned           = "ACCOUNT_ORPHANED"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	OpenCurrentAccount(context.Context, cqrs.OpenCurrentAccountCommand) (*models.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
}

type OpenCurrentAccountRequest struct {
	CustomerID    int64            `json:"customerId" validate:"required,gte=1"`
	InitialCredit *decimal.Decimal `json:"initialCredit" validate:"required"`
}

func NewAccountHandler(commands AccountCommander) *AccountHandler {
	return &AccountHandler{commands: commands}
}

func (h *AccountHandler) OpenCurrentAccount(c *gin.Context) {
	var req OpenCurrentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if !req.InitialCredit.IsPositive() {
		respondCreditTooLow(c)
		return
	}

	account, err := h.commands.OpenCurrentAccount(c.Request.Context(), cqrs.OpenCurrentAccountCommand{
		CustomerID:    req.CustomerID,
		InitialCredit: *req.InitialCredit,
	})
	if err != nil {
		var orphan *domain.CompensationFailedError
		var rolledBack *domain.AccountCreationFailedError
		switch {
		case errors.Is(err, domain.ErrCreditTooLow):
			respondCreditTooLow(c)
		case errors.Is(err, domain.ErrCustomerNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Customer not found")
		case errors.As(err, &orphan):
			middleware.RespondWithErrorCode(c, http.StatusInternalServerError, CodeAccountOrphaned,
				"Account creation failed and could not be rolled back")
		case errors.As(err, &rolledBack):
			middleware.RespondWithErrorCode(c, http.StatusBadGateway, CodeAccountCreationRolledBack,
				"Account creation failed, changes were rolled back")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	c.JSON(http.StatusCreated, account)
}

func respondCreditTooLow(c *gin.Context) {
	middleware.RespondWithValidationError(c, []middleware.ValidationError{{
		Field:   "initialCredit",
		Message: domain.ErrCreditTooLow.Error(),
		Type:    "gt",
	}})
}
