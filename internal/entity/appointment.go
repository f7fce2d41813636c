package entity

import (
	"strings"
	"time"
)

// appointmentLayouts are tried in order. Layouts without an offset are read
// in the caller's location.
var appointmentLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"01/02/2006",
}

// ParseAppointment resolves a free-form appointment value to an instant.
// ok is false for empty or unrecognised input.
func ParseAppointment(raw string, loc *time.Location) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range appointmentLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// AppointmentAt resolves the lead's appointment in loc.
func (l *Lead) AppointmentAt(loc *time.Location) (time.Time, bool) {
	return ParseAppointment(l.AppointmentDatetime, loc)
}
