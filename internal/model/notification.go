package model

import "fmt"

// Severity tags a notification for rendering.
type Severity string

const (
	// SeveritySuccess reports a completed operation.
	SeveritySuccess Severity = "success"
	// SeverityError reports a failed operation.
	SeverityError Severity = "error"
	// SeverityWarning reports something the user should look at.
	SeverityWarning Severity = "warning"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning:
		return true
	}
	return false
}

// ParseSeverity converts a user supplied string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// Notification is a transient, severity-tagged message for the user.
// The persisted JSON shape uses "type" for the severity.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
}
