package models

type IncidentType string

const (
	IncidentTypeIssue      IncidentType = "Issue"
	IncidentTypeSuggestion IncidentType = "Suggestion"
	IncidentTypeEmergency  IncidentType = "Emergency"
)

// Incident is one report received from the call-handling webhook.
// Everything except Resolved is written once at creation.
type Incident struct {
	ID               string `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Date             string `json:"date" bson:"date"`
	Time             string `json:"time" bson:"time"`
	IncidentType     string `json:"incident_type" bson:"incident_type" gorm:"index"`
	Location         string `json:"location" bson:"location" gorm:"type:text"`
	CallerName       string `json:"caller_name" bson:"caller_name"`
	IssueDescription string `json:"issue_description" bson:"issue_description" gorm:"type:text"`
	IncidentTime     string `json:"incident_time" bson:"incident_time"`
	Resolved         bool   `json:"resolved" bson:"resolved" gorm:"not null;default:false;index"`
}

func (Incident) TableName() string {
	return "incidents"
}

// Coordinates is a geocoded point. It is derived on every read and never stored.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EnrichedIncident is an Incident plus its geocoded location, or null
// coordinates when the address could not be resolved.
type EnrichedIncident struct {
	Incident
	Coordinates *Coordinates `json:"coordinates"`
}

// IncidentFilter selects incidents by equality. Nil fields are ignored, so
// the zero value matches every incident.
type IncidentFilter struct {
	IncidentType *string
	Resolved     *bool
}

// Fields returns the filter as column/value pairs. Column names match the
// json and bson keys so both stores can use it directly.
func (f IncidentFilter) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if f.IncidentType != nil {
		fields["incident_type"] = *f.IncidentType
	}
	if f.Resolved != nil {
		fields["resolved"] = *f.Resolved
	}
	return fields
}

// ByType is a filter on incident_type, optionally narrowed to a resolved state.
func ByType(t IncidentType, resolved *bool) IncidentFilter {
	s := string(t)
	return IncidentFilter{IncidentType: &s, Resolved: resolved}
}

// Unresolved matches incidents that still need action.
func Unresolved() IncidentFilter {
	resolved := false
	return IncidentFilter{Resolved: &resolved}
}

type IncidentStats struct {
	TotalIssues       int64 `json:"totalIssues"`
	SolvedIssues      int64 `json:"solvedIssues"`
	TotalSuggestions  int64 `json:"totalSuggestions"`
	SolvedSuggestions int64 `json:"solvedSuggestions"`
	EmergencyReported int64 `json:"emergencyReported"`
}
