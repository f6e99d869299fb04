package models

import "time"

// ScheduleSnapshot is one completed fetch cycle for a league and calendar
// date, handed to the mirror, publishers and the websocket hub
type ScheduleSnapshot struct {
	League      string          `json:"league"`       // sport key, "icehockey_nhl"
	DisplayName string          `json:"display_name"` // "NHL"
	Date        string          `json:"date"`         // YYYY-MM-DD in the service time zone
	Games       []CanonicalGame `json:"games"`
	Context     string          `json:"context"`
	FetchedAt   time.Time       `json:"fetched_at"`
}
