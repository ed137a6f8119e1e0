package httpserver

import (
	"errors"
	"log"
	"net/http"

	"dealership/internal/cart"
	"dealership/internal/configurator"
	"dealership/internal/domain"
	"dealership/internal/payment"
	accountsvc "dealership/internal/service/account"
	reservationsvc "dealership/internal/service/reservation"
	"dealership/internal/session"
	"github.com/gin-gonic/gin"
)

// envelope wraps every JSON response body.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// writeError maps service errors onto HTTP statuses. Unmapped errors are
// logged and reported as 500 without detail.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		fail(c, status, "internal error")
		return
	}
	fail(c, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, configurator.ErrUnknownStep),
		errors.Is(err, configurator.ErrUnknownKind),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, reservationsvc.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, accountsvc.ErrInvalidToken),
		errors.Is(err, accountsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, cart.ErrNotAdjustable),
		errors.Is(err, reservationsvc.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
