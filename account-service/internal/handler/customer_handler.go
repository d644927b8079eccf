package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/middleware"
	"github.com/corebank/banking/shared/models"
	"github.com/gin-gonic/gin"
)

// CustomerQuerier defines the read-side operations used by CustomerHandler.
type CustomerQuerier interface {
	GetCustomer(context.Context, cqrs.GetCustomerQuery) (*models.CustomerSnapshot, error)
}

type CustomerHandler struct {
	queries CustomerQuerier
}

func NewCustomerHandler(queries CustomerQuerier) *CustomerHandler {
	return &CustomerHandler{queries: queries}
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		middleware.RespondWithValidationError(c, []middleware.ValidationError{{
			Field:   "id",
			Message: "Value must be a positive integer",
			Type:    "gte",
		}})
		return
	}

	snapshot, err := h.queries.GetCustomer(c.Request.Context(), cqrs.GetCustomerQuery{CustomerID: id})
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Customer not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch customer")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
