package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username and password are required",
		})
		return
	}

	if err := h.session.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, h.session.State())
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "email, username and password are required",
		})
		return
	}

	profile := commerce.Profile{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	}
	if err := h.session.Register(c.Request.Context(), profile); err != nil {
		respondError(c, err, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "registered",
	})
}

// logout is idempotent.
func (h *Handler) logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State())
}
