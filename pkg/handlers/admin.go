package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login handles admin authentication and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

type keyRequest struct {
	Name      string `json:"name" binding:"required"`
	RateLimit int    `json:"rate_limit" binding:"omitempty,min=1"`
}

// GenerateKey issues a new API key; the full key is only shown here
func (h *Handler) GenerateKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	key, record, err := h.Auth.CreateKey(c.Request.Context(), req.Name, req.RateLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         record.ID,
		"key":        key,
		"name":       record.Name,
		"rate_limit": record.RateLimit,
	})
}

func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.Auth.ListKeys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *Handler) RevokeKey(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Auth.RevokeKey(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

type limitRequest struct {
	RateLimit int `json:"rate_limit" binding:"required,min=1"`
}

func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req limitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.Auth.UpdateKeyLimit(c.Request.Context(), id, req.RateLimit); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}
