// Package notify turns collection outcomes into short-lived user notifications.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/geoarch/pkg/core"
)

// DismissAfter is how long a notification stays on screen.
const DismissAfter = 3 * time.Second

// Severity selects how a notification is presented.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message for the user.
type Notification struct {
	Message      string        `json:"message"`
	Severity     Severity      `json:"severity"`
	DismissAfter time.Duration `json:"-"`
}

// MarshalJSON reports DismissAfter in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		DismissAfterMS int64 `json:"dismiss_after_ms"`
	}{alias(n), n.DismissAfter.Milliseconds()})
}

func newNotification(sev Severity, format string, args ...any) Notification {
	return Notification{
		Message:      fmt.Sprintf(format, args...),
		Severity:     sev,
		DismissAfter: DismissAfter,
	}
}

// FromResult describes the outcome of a proposal.
func FromResult(r core.Result) Notification {
	switch r.Status {
	case core.StatusLimitReached:
		return newNotification(SeverityError, "Limit reached for %s!", r.Type)
	case core.StatusContained:
		return newNotification(SeverityError, "Blocked: Shape is fully inside another!")
	case core.StatusFullyOverlapped:
		return newNotification(SeverityError, "Blocked: Shape fully overlaps existing area.")
	case core.StatusInvalid:
		return newNotification(SeverityError, "System Error: Could not save shape.")
	case core.StatusAccepted:
	}

	if r.Trimmed() {
		return newNotification(SeverityInfo, "%s trimmed to avoid overlapping %d shape(s)", r.Type, len(r.TrimmedBy))
	}
	return newNotification(SeveritySuccess, "%s saved", r.Type)
}

// Deleted is shown after a shape is removed.
func Deleted() Notification {
	return newNotification(SeverityInfo, "Shape deleted")
}

// Cleared is shown after the whole map is emptied.
func Cleared() Notification {
	return newNotification(SeverityError, "Map cleared")
}

// Exported is shown after the collection is exported.
func Exported() Notification {
	return newNotification(SeveritySuccess, "GeoJSON Exported!")
}
