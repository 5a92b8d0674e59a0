package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /health
func (h *Handler) Health(c *gin.Context) {
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"db":      "ok",
	}

	sqlDB, err := h.DB.DB()
	if err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot get DB instance"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
