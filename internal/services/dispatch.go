package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DispatchResult is the outcome of one dispatch attempt. Failures are data,
// not errors: the incident is already stored when dispatch runs.
type DispatchResult struct {
	Accepted   bool            `json:"accepted"`
	StatusCode int             `json:"statusCode,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

func dispatchFailed(format string, args ...interface{}) DispatchResult {
	return DispatchResult{Reason: fmt.Sprintf(format, args...)}
}

// DispatchNotifier asks the call-dispatch service to phone the responder
// about an incident.
type DispatchNotifier interface {
	Notify(ctx context.Context, incident models.Incident) DispatchResult
}

type CallContext struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	IncidentTime string `json:"incident_time"`
}

type DispatchRequest struct {
	AgentID     int64       `json:"agent_id"`
	ToNumber    string      `json:"to_number"`
	CallContext CallContext `json:"call_context"`
}

type DispatchService struct {
	cfg    config.DispatchConfig
	client *http.Client
}

func NewDispatchService(cfg config.DispatchConfig) *DispatchService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DispatchService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// BuildRequest maps an incident onto the dispatch payload
func (ds *DispatchService) BuildRequest(incident models.Incident) DispatchRequest {
	return DispatchRequest{
		AgentID:  ds.cfg.AgentID,
		ToNumber: ds.cfg.ToNumber,
		CallContext: CallContext{
			Date:         incident.Date,
			Time:         incident.Time,
			Location:     incident.Location,
			Description:  incident.IssueDescription,
			IncidentTime: incident.IncidentTime,
		},
	}
}

func (ds *DispatchService) Notify(ctx context.Context, incident models.Incident) DispatchResult {
	ctx, span := tracer.Start(ctx, "dispatch.notify")
	defer span.End()
	span.SetAttributes(attribute.String("incident.id", incident.ID))

	result := ds.notify(ctx, incident)

	log := logger.WithIncident(incident.ID, "dispatch")
	if result.Accepted {
		log.WithField("status", result.StatusCode).Info("Call dispatch accepted")
	} else {
		span.SetStatus(codes.Error, result.Reason)
		log.WithFields(map[string]interface{}{
			"status": result.StatusCode,
			"reason": result.Reason,
		}).Warn("Call dispatch failed")
	}
	return result
}

func (ds *DispatchService) notify(ctx context.Context, incident models.Incident) DispatchResult {
	if !ds.cfg.Enabled() {
		return dispatchFailed("dispatch not configured")
	}

	body, err := json.Marshal(ds.BuildRequest(incident))
	if err != nil {
		return dispatchFailed("failed to marshal dispatch request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ds.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return dispatchFailed("failed to create dispatch request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+ds.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ds.client.Do(req)
	if err != nil {
		return dispatchFailed("failed to call dispatch service: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return DispatchResult{StatusCode: resp.StatusCode, Reason: fmt.Sprintf("failed to read dispatch response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return DispatchResult{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("dispatch service returned HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 512)),
		}
	}

	if !json.Valid(respBody) {
		return DispatchResult{StatusCode: resp.StatusCode, Reason: "dispatch service returned malformed JSON"}
	}

	return DispatchResult{
		Accepted:   true,
		StatusCode: resp.StatusCode,
		Response:   json.RawMessage(respBody),
	}
}
