package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"dealership/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handlers) listVariants(c *gin.Context) {
	filter := domain.VariantFilter{
		Model:     c.Query("model"),
		Condition: c.Query("condition"),
		BodyType:  c.Query("body"),
	}
	if raw := strings.TrimSpace(c.Query("maxPrice")); raw != "" {
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &limit
	}
	variants, err := h.deps.Catalog.ListVariants(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nonNil(variants))
}

func (h *handlers) getVariant(c *gin.Context) {
	v, err := h.deps.Catalog.GetVariant(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *handlers) createVariant(c *gin.Context) {
	var in domain.VehicleVariant
	if !bind(c, &in) {
		return
	}
	v, err := h.deps.Catalog.CreateVariant(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, v)
}

func (h *handlers) updateVariant(c *gin.Context) {
	var in domain.VehicleVariant
	if !bind(c, &in) {
		return
	}
	v, err := h.deps.Catalog.UpdateVariant(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *handlers) deleteVariant(c *gin.Context) {
	if err := h.deps.Catalog.DeleteVariant(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *handlers) listOptions(c *gin.Context) {
	options, err := h.deps.Catalog.ListOptions(c.Request.Context(), c.Query("kind"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nonNil(options))
}

func (h *handlers) getOption(c *gin.Context) {
	o, err := h.deps.Catalog.GetOption(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *handlers) createOption(c *gin.Context) {
	var in domain.OptionItem
	if !bind(c, &in) {
		return
	}
	o, err := h.deps.Catalog.CreateOption(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (h *handlers) updateOption(c *gin.Context) {
	var in domain.OptionItem
	if !bind(c, &in) {
		return
	}
	o, err := h.deps.Catalog.UpdateOption(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *handlers) deleteOption(c *gin.Context) {
	if err := h.deps.Catalog.DeleteOption(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *handlers) listAccessories(c *gin.Context) {
	accessories, err := h.deps.Catalog.ListAccessories(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nonNil(accessories))
}

func (h *handlers) getAccessory(c *gin.Context) {
	a, err := h.deps.Catalog.GetAccessory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, a)
}

func (h *handlers) createAccessory(c *gin.Context) {
	var in domain.Accessory
	if !bind(c, &in) {
		return
	}
	a, err := h.deps.Catalog.CreateAccessory(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, a)
}

func (h *handlers) updateAccessory(c *gin.Context) {
	var in domain.Accessory
	if !bind(c, &in) {
		return
	}
	a, err := h.deps.Catalog.UpdateAccessory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, a)
}

func (h *handlers) deleteAccessory(c *gin.Context) {
	if err := h.deps.Catalog.DeleteAccessory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

// bind decodes a JSON body, answering 400 itself on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
