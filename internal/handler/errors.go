package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bursary/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// statusFor maps the core's expected, caller-attributable errors to HTTP
// status codes. Anything unmapped is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientGoods),
		errors.Is(err, domain.ErrCreditLimitExceeded),
		errors.Is(err, domain.ErrLoanBanned),
		errors.Is(err, domain.ErrMaxActiveLoans),
		errors.Is(err, domain.ErrNoActiveLoan),
		errors.Is(err, domain.ErrBalanceCapExceeded),
		errors.Is(err, domain.ErrSelfTrade):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrContention):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the mapped status with the error text. Expected
// conditions surface verbatim for display; server faults are masked.
func respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
