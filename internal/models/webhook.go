package models

import (
	"strconv"
	"strings"
)

// WebhookPayload is the body the call-handling service posts after a call.
// Fields are loosely typed because the upstream report is not schema checked:
// a call_report or extracted_variables that is not an object counts as absent.
type WebhookPayload struct {
	CallDate   interface{} `json:"call_date"`
	CallReport interface{} `json:"call_report"`
}

// ExtractedVariables returns call_report.extracted_variables, or nil when
// either level is missing or not an object.
func (p WebhookPayload) ExtractedVariables() map[string]interface{} {
	report, ok := p.CallReport.(map[string]interface{})
	if !ok {
		return nil
	}
	vars, ok := report["extracted_variables"].(map[string]interface{})
	if !ok {
		return nil
	}
	return vars
}

// DateTime splits call_date into its first two whitespace separated tokens.
// Missing tokens, or a call_date that is not a string, come back empty.
func (p WebhookPayload) DateTime() (date, clock string) {
	raw, ok := p.CallDate.(string)
	if !ok {
		return "", ""
	}
	parts := strings.Fields(raw)
	if len(parts) > 0 {
		date = parts[0]
	}
	if len(parts) > 1 {
		clock = parts[1]
	}
	return date, clock
}

// Variable returns an extracted variable as a string. Missing, null and falsy
// values (false, 0, "") become "", other scalars are formatted.
func (p WebhookPayload) Variable(name string) string {
	switch v := p.ExtractedVariables()[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// ToIncident builds the unsaved incident for this payload.
func (p WebhookPayload) ToIncident() Incident {
	date, clock := p.DateTime()
	return Incident{
		Date:             date,
		Time:             clock,
		IncidentType:     p.Variable("incident_type"),
		Location:         p.Variable("location"),
		CallerName:       p.Variable("caller_name"),
		IssueDescription: p.Variable("issue_description"),
		IncidentTime:     p.Variable("incident_time"),
		Resolved:         false,
	}
}
