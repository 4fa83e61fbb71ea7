package domain

import "time"

// Recording is a remote-side recording of a past session. Fetched on
// demand, never persisted here.
type Recording struct {
	RecordID    string    `json:"record_id"`
	MeetingID   string    `json:"meeting_id"`
	Name        string    `json:"name"`
	Published   bool      `json:"published"`
	State       string    `json:"state"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PlaybackURL string    `json:"playback_url"`
}
