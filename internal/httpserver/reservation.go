package httpserver

import (
	"net/http"

	reservationsvc "dealership/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type submitReservationRequest struct {
	Source          string `json:"source" binding:"required"`
	ConfigurationID string `json:"configurationId"`
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (h *handlers) submitReservation(c *gin.Context) {
	var in submitReservationRequest
	if !bind(c, &in) {
		return
	}
	input := reservationsvc.SubmitInput{Source: in.Source, ConfigurationID: in.ConfigurationID}
	if claims := claimsFrom(c); claims != nil {
		accountID := claims.AccountID
		input.AccountID = &accountID
	}
	sub, err := h.deps.Reservations.Submit(c.Request.Context(), sessionToken(c), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, sub)
}

func (h *handlers) reservationStatus(c *gin.Context) {
	r, err := h.deps.Reservations.Status(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, r)
}

func (h *handlers) listReservations(c *gin.Context) {
	items, err := h.deps.Reservations.List(c.Request.Context(), c.Query("kind"), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nonNil(items))
}

func (h *handlers) decideReservation(c *gin.Context) {
	var in decisionRequest
	if !bind(c, &in) {
		return
	}
	advisorID := ""
	if claims := claimsFrom(c); claims != nil {
		advisorID = claims.AccountID
	}
	r, err := h.deps.Reservations.Decide(c.Request.Context(), advisorID, c.Param("id"), in.Decision)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, r)
}
