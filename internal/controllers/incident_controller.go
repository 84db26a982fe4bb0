package controllers

import (
	"errors"
	"net/http"

	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/repository"
	"github.com/civicline/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type IncidentController struct {
	incidents      *services.IncidentService
	enrichment     *services.EnrichmentService
	unresolvedOnly bool
}

func NewIncidentController(incidents *services.IncidentService, enrichment *services.EnrichmentService, unresolvedOnly bool) *IncidentController {
	return &IncidentController{
		incidents:      incidents,
		enrichment:     enrichment,
		unresolvedOnly: unresolvedOnly,
	}
}

// GetReports returns incidents with coordinates attached
func (ic *IncidentController) GetReports(c *gin.Context) {
	reports, err := ic.enrichment.Enrich(c.Request.Context(), ic.unresolvedOnly)
	if err != nil {
		logger.WithError(err, "incident_controller").Error("Failed to fetch reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetInfo returns every stored incident
func (ic *IncidentController) GetInfo(c *gin.Context) {
	incidents, err := ic.incidents.ListAll(c.Request.Context())
	if err != nil {
		logger.WithError(err, "incident_controller").Error("Failed to fetch incidents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch incidents"})
		return
	}

	c.JSON(http.StatusOK, incidents)
}

func (ic *IncidentController) GetStats(c *gin.Context) {
	stats, err := ic.incidents.Stats(c.Request.Context())
	if err != nil {
		logger.WithError(err, "incident_controller").Error("Failed to fetch stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type updateResolvedRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

// UpdateResolved marks an incident as resolved or reopens it
func (ic *IncidentController) UpdateResolved(c *gin.Context) {
	id := c.Param("id")

	var req updateResolvedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithError(err, "incident_controller").Warn("Invalid resolve request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := ic.incidents.SetResolved(c.Request.Context(), id, *req.Resolved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
			return
		}
		logger.WithError(err, "incident_controller").Error("Failed to update incident")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update incident"})
		return
	}

	c.Status(http.StatusOK)
}
