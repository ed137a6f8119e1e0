package httpserver

import (
	"net/http"

	accountsvc "dealership/internal/service/account"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) signup(c *gin.Context) {
	var in accountsvc.SignupInput
	if !bind(c, &in) {
		return
	}
	acc, err := h.deps.Accounts.Signup(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, acc)
}

func (h *handlers) login(c *gin.Context) {
	var in loginRequest
	if !bind(c, &in) {
		return
	}
	sess, err := h.deps.Accounts.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, sess)
}

func (h *handlers) me(c *gin.Context) {
	token, _ := bearerToken(c.GetHeader("Authorization"))
	acc, err := h.deps.Accounts.LookupByToken(c.Request.Context(), token)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, acc)
}
