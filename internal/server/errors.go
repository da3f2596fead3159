package server

import (
	"errors"
	"net/http"

	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	pincodedomain "github.com/aerwok/rocketrybox/internal/pincode/domain"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/gin-gonic/gin"
)

// apiError is the error envelope returned to clients.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "malformed request body"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// ErrNotFound is the generic not-found envelope.
var ErrNotFound = &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}

// AbortWithError writes the error envelope for any error reaching a handler.
// Domain sentinels map to stable status codes; anything unknown is a 500.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := statusFor(err)
	payload := &apiError{Status: status, Code: err.Error(), Message: messageFor(err)}
	if status == http.StatusInternalServerError {
		payload.Code = "internal_error"
		payload.Message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": payload})
}

func statusFor(err error) int {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, pincodedomain.ErrUnknownPincode):
		return http.StatusBadRequest
	case errors.Is(err, ratecarddomain.ErrNoRateCardForZone):
		return http.StatusNotFound
	case errors.Is(err, ratecarddomain.ErrRateCardNotFound),
		errors.Is(err, walletdomain.ErrSellerNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ratecarddomain.ErrDuplicateActive),
		errors.Is(err, orderdomain.ErrOrderCancelled):
		return http.StatusConflict
	case errors.Is(err, walletdomain.ErrInsufficientWalletBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, rateshopdomain.ErrNoServiceableProvider),
		errors.Is(err, orderdomain.ErrOrderNotBooked):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, pincodedomain.ErrInvalidPincode),
		errors.Is(err, weight.ErrInvalidWeight),
		errors.Is(err, weight.ErrInvalidDimensions),
		errors.Is(err, quotedomain.ErrInvalidDeclaredValue),
		errors.Is(err, zonedomain.ErrInvalidZone),
		errors.Is(err, ratecarddomain.ErrInvalidCourier),
		errors.Is(err, ratecarddomain.ErrInvalidZone),
		errors.Is(err, ratecarddomain.ErrInvalidMode),
		errors.Is(err, ratecarddomain.ErrInvalidRate),
		errors.Is(err, ratecarddomain.ErrInvalidWeightSlab),
		errors.Is(err, ratecarddomain.ErrInvalidID),
		errors.Is(err, walletdomain.ErrInvalidSeller),
		errors.Is(err, walletdomain.ErrInvalidAmount),
		errors.Is(err, walletdomain.ErrInvalidTransactionType),
		errors.Is(err, orderdomain.ErrInvalidOrderID):
		return true
	default:
		return false
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, walletdomain.ErrInsufficientWalletBalance):
		return "wallet balance is insufficient for this order"
	case errors.Is(err, rateshopdomain.ErrNoServiceableProvider):
		return "no courier can service this shipment"
	case errors.Is(err, pincodedomain.ErrUnknownPincode):
		return "pincode is not in the serviceability directory"
	default:
		return err.Error()
	}
}
