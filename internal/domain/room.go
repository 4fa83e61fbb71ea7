// Package domain contains entities without logic, just meta-data.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

type (
	RoomID   string
	ServerID string
)

// Room is the locally persisted record of a reusable meeting endpoint.
// MeetingID is the externally visible identifier; it must stay unique per
// server and must not change once a remote session has been created
// against it, or the remote session is orphaned.
//
// CreateTime is the opaque nonce the remote side assigns to a session
// instance. Blank means no session has ever been created. Running state is
// NOT stored here: it lives in the status cache and is re-derived from the
// remote source of truth on every check.
type Room struct {
	ID       RoomID   `gorm:"primaryKey;size:36" json:"id"`
	ServerID ServerID `gorm:"size:36;uniqueIndex:idx_server_meeting" json:"server_id"`
	Name     string   `gorm:"size:255" json:"name"`

	MeetingID    string `gorm:"size:255;uniqueIndex:idx_server_meeting" json:"meeting_id"`
	AttendeeKey  string `gorm:"size:64" json:"-"`
	ModeratorKey string `gorm:"size:64" json:"-"`
	CreateTime   string `gorm:"size:64" json:"create_time"`

	// Whether a plain attendee may start a new session; moderators always can.
	AnyoneCanStart bool `json:"anyone_can_start"`

	// Options forwarded to the remote side when a session is created.
	RecordMeeting           bool   `json:"record_meeting"`
	Duration                int    `json:"duration"`
	DefaultLayout           string `gorm:"size:64" json:"default_layout"`
	AutoStartRecording      bool   `json:"auto_start_recording"`
	AllowStartStopRecording bool   `json:"allow_start_stop_recording"`
	WelcomeMessage          string `gorm:"size:1024" json:"welcome_message"`
	ModeratorOnlyMessage    string `gorm:"size:1024" json:"moderator_only_message"`
	MaxParticipants         int    `json:"max_participants"`
	LogoutURL               string `gorm:"size:1024" json:"logout_url"`
}

// DefaultMeetingID derives a meeting id for rooms created without one:
// the sanitized room name plus a uuid suffix to keep it unique per server.
func DefaultMeetingID(name string) string {
	base := strings.ReplaceAll(strings.TrimSpace(name), " ", "-")
	if base == "" {
		return uuid.NewString()
	}
	return base + "-" + uuid.NewString()[:8]
}
