package security

// Severity is derived from EventType, never supplied by callers
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

// Workflow events
const (
	EventUserCreated          EventType = "user_created"
	EventRoleModified         EventType = "role_modified"
	EventMiddlemanAssigned    EventType = "middleman_assigned"
	EventApplicationDecision  EventType = "application_decision"
	EventDocumentReviewed     EventType = "document_reviewed"
	EventDeletionRequested    EventType = "deletion_requested"
	EventDeletionApproved     EventType = "deletion_approved"
	EventDeletionRejected     EventType = "deletion_rejected"
	EventSettingsChanged      EventType = "settings_changed"
	EventDataExport           EventType = "data_export"
	EventProvisioningRollback EventType = "provisioning_rollback"
	EventServerError          EventType = "server_error"
)

var EventSeverityMap = map[EventType]Severity{
	EventLoginSuccess:        SeverityINFO,
	EventDocumentReviewed:    SeverityINFO,
	EventApplicationDecision: SeverityINFO,
	EventMiddlemanAssigned:   SeverityINFO,

	EventDeletionRequested: SeverityMEDIUM,
	EventDataExport:        SeverityMEDIUM,
	EventServerError:       SeverityMEDIUM,
	EventSettingsChanged:   SeverityMEDIUM,

	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventValidationFailed:   SeverityWARN,
	EventRouteDenied:        SeverityWARN,
	EventUploadRejected:     SeverityWARN,
	EventDeletionRejected:   SeverityWARN,

	EventLoginBlocked:         SeverityHIGH,
	EventUnauthorizedAccess:   SeverityHIGH,
	EventDeletedAccountUse:    SeverityHIGH,
	EventRoleModified:         SeverityHIGH,
	EventUserCreated:          SeverityHIGH,
	EventDeletionApproved:     SeverityHIGH,
	EventProvisioningRollback: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, MEDIUM when unmapped
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}
