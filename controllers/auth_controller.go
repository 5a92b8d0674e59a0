package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

const minPasswordLen = 6

// POST /api/register/
func (h *Handler) Register(c *gin.Context) {
	var req api.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > 150 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username must be 1-150 characters"})
		return
	}
	if len(req.Password) < minPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password must be at least 6 characters"})
		return
	}
	if !h.checkCaptcha(c, req.RecaptchaToken, utils.ActionRegister) {
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		internalError(c, "Cannot create account", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "A user with that username already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, err, "Invalid password")
		return
	}
	u := models.User{Username: req.Username, Password: hash}
	if err := h.DB.WithContext(ctx).Create(&u).Error; err != nil {
		// lost a race with a concurrent registration of the same name
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "A user with that username already exists"})
			return
		}
		internalError(c, "Cannot create account", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"username": u.Username})
}

// POST /api-token-auth/
func (h *Handler) Login(c *gin.Context) {
	var req api.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}
	if !h.checkCaptcha(c, req.RecaptchaToken, utils.ActionLogin) {
		return
	}

	var u models.User
	err := h.DB.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(req.Username)).First(&u).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(c, "Cannot log in", err)
		return
	}
	if err != nil || !utils.CheckPassword(u.Password, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unable to log in with provided credentials"})
		return
	}

	token, err := utils.GenerateToken(h.JWTSecret, u.ID, h.TokenTTL)
	if err != nil {
		internalError(c, "Cannot issue token", err)
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

// POST /api/logout/
func (h *Handler) Logout(c *gin.Context) {
	claims := c.MustGet(middleware.CtxClaims).(*utils.JWTClaims)
	if err := h.Blacklist.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		internalError(c, "Cannot revoke token", err)
		return
	}
	c.Status(http.StatusNoContent)
}
