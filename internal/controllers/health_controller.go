package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/civicline/backend/internal/repository"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

type HealthController struct {
	repo    repository.IncidentRepository
	timeout time.Duration
}

func NewHealthController(repo repository.IncidentRepository) *HealthController {
	return &HealthController{
		repo:    repo,
		timeout: 5 * time.Second,
	}
}

// Health reports whether the incident store is reachable
func (hc *HealthController) Health(c *gin.Context) {
	storeStatus := "ok"
	var storeError string

	if hc.repo == nil {
		storeStatus = "error"
		storeError = "store connection not initialized"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), hc.timeout)
		defer cancel()
		if err := hc.repo.Ping(ctx); err != nil {
			storeStatus = "error"
			storeError = err.Error()
		}
	}

	overallStatus := "ok"
	statusCode := http.StatusOK
	if storeStatus != "ok" {
		overallStatus = "error"
		statusCode = http.StatusServiceUnavailable
	}

	store := gin.H{"status": storeStatus}
	if storeError != "" {
		store["error"] = storeError
	}

	c.JSON(statusCode, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"services": gin.H{
			"store": store,
		},
	})
}
