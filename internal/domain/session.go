package domain

import "time"

// Session tracks one remote-side instantiation of a room's meeting,
// identified by MeetingID + CreateTime. A room has at most one session that
// is not ended; Ended is terminal for a given CreateTime.
type Session struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	RoomID     RoomID    `gorm:"size:36;index" json:"room_id"`
	MeetingID  string    `gorm:"size:255" json:"meeting_id"`
	CreateTime string    `gorm:"size:64" json:"create_time"`
	Ended      bool      `json:"ended"`
	StartedAt  time.Time `json:"started_at"`
}
