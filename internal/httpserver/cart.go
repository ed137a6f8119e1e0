package httpserver

import (
	"net/http"

	"dealership/internal/cart"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartView struct {
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func toCartView(c cart.Cart) cartView {
	return cartView{
		Lines:     nonNil(c.Lines),
		Total:     cart.Total(c),
		ItemCount: cart.ItemCount(c),
	}
}

type addAccessoryRequest struct {
	AccessoryID string `json:"accessoryId" binding:"required"`
	Quantity    int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	ct, err := h.deps.Cart.Get(sessionToken(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}

func (h *handlers) addAccessory(c *gin.Context) {
	var in addAccessoryRequest
	if !bind(c, &in) {
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	ct, err := h.deps.Cart.AddAccessory(c.Request.Context(), sessionToken(c), in.AccessoryID, in.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}

func (h *handlers) setLineQuantity(c *gin.Context) {
	var in setQuantityRequest
	if !bind(c, &in) {
		return
	}
	ct, err := h.deps.Cart.SetQuantity(sessionToken(c), c.Param("id"), in.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}

// decrementLine removes quantity units from an accessory line; an empty
// body removes one.
func (h *handlers) decrementLine(c *gin.Context) {
	in := setQuantityRequest{Quantity: 1}
	if c.Request.ContentLength != 0 && !bind(c, &in) {
		return
	}
	ct, err := h.deps.Cart.Decrement(sessionToken(c), c.Param("id"), in.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}

func (h *handlers) removeLine(c *gin.Context) {
	ct, err := h.deps.Cart.Remove(sessionToken(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}

func (h *handlers) clearCart(c *gin.Context) {
	ct, err := h.deps.Cart.Clear(sessionToken(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, toCartView(ct))
}
