package httpserver

import (
	"net/http"
	"time"

	wizard "dealership/internal/configurator"
	"dealership/internal/domain"
	"dealership/internal/pricing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type configurationView struct {
	ID        string                `json:"id"`
	Variant   domain.VehicleVariant `json:"variant"`
	Selection pricing.Selection     `json:"selection"`
	Step      wizard.Step           `json:"step"`
	Steps     []wizard.Step         `json:"steps"`
	Price     decimal.Decimal       `json:"price"`
	Breakdown pricing.Breakdown     `json:"breakdown"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func toConfigurationView(cfg *wizard.Configuration) configurationView {
	return configurationView{
		ID:        cfg.ID,
		Variant:   cfg.Variant,
		Selection: cfg.Selection,
		Step:      cfg.Step,
		Steps:     wizard.Steps,
		Price:     cfg.Price(),
		Breakdown: cfg.Breakdown(),
		CreatedAt: cfg.CreatedAt,
		UpdatedAt: cfg.UpdatedAt,
	}
}

type startConfigurationRequest struct {
	VariantID string `json:"variantId" binding:"required"`
}

type selectOptionRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

type navigateRequest struct {
	Action string `json:"action" binding:"required"`
	Step   string `json:"step"`
}

func (h *handlers) createSession(c *gin.Context) {
	token, sess, err := h.deps.Sessions.Issue()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"token": token, "expiresAt": sess.ExpiresAt})
}

func (h *handlers) startConfiguration(c *gin.Context) {
	var in startConfigurationRequest
	if !bind(c, &in) {
		return
	}
	cfg, err := h.deps.Configurator.Start(c.Request.Context(), sessionToken(c), in.VariantID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, toConfigurationView(cfg))
}

func (h *handlers) getConfiguration(c *gin.Context) {
	cfg, err := h.deps.Configurator.Get(sessionToken(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toConfigurationView(cfg))
}

func (h *handlers) discardConfiguration(c *gin.Context) {
	if err := h.deps.Configurator.Discard(sessionToken(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *handlers) selectOption(c *gin.Context) {
	var in selectOptionRequest
	if !bind(c, &in) {
		return
	}
	cfg, err := h.deps.Configurator.Select(c.Request.Context(), sessionToken(c), c.Param("id"), in.OptionID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toConfigurationView(cfg))
}

func (h *handlers) deselectOption(c *gin.Context) {
	cfg, err := h.deps.Configurator.Deselect(sessionToken(c), c.Param("id"), c.Param("optionId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toConfigurationView(cfg))
}

func (h *handlers) navigate(c *gin.Context) {
	var in navigateRequest
	if !bind(c, &in) {
		return
	}
	cfg, err := h.deps.Configurator.Navigate(sessionToken(c), c.Param("id"), in.Action, in.Step)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toConfigurationView(cfg))
}

func (h *handlers) addConfigurationToCart(c *gin.Context) {
	ct, err := h.deps.Configurator.AddToCart(sessionToken(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}
