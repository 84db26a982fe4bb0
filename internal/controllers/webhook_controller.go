package controllers

import (
	"net/http"

	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type WebhookController struct {
	ingestion *services.IngestionService
}

func NewWebhookController(ingestion *services.IngestionService) *WebhookController {
	return &WebhookController{
		ingestion: ingestion,
	}
}

// PostData receives the end-of-call webhook from the voice agent
func (wc *WebhookController) PostData(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.WithError(err, "webhook_controller").Warn("Invalid webhook body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := wc.ingestion.Ingest(c.Request.Context(), payload)
	if err != nil {
		logger.WithError(err, "webhook_controller").Error("Failed to ingest webhook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Data saved and call dispatched",
		"dispatched": result.Dispatch.Accepted,
	})
}
