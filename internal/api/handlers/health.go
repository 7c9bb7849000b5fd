package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cadenzalabs/composer-api/internal/models"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": models.APIVersion,
	})
}
