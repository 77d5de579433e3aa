package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HansenDafa/indostereoset-annotation/internal/middleware"
	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// Login checks credentials and returns a session token
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Login(req.Name, req.Password)
	if err != nil {
		h.fail(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout ends the current session
func (h *Handler) Logout(c *gin.Context) {
	h.auth.Logout(middleware.Claims(c))
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the logged-in user
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.auth.CurrentUser(middleware.Claims(c))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UserCount returns the number of registered users
func (h *Handler) UserCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.auth.UserCount()})
}
