package core

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/roomgate/internal/domain"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrDuplicateMeetingID = errors.New("meeting id already taken on this server")
)

// CallMeta carries per-request metadata forwarded on remote calls.
type CallMeta struct {
	ForwardedFor string
}

// MeetingInfo is the remote view of a session, as last reported by the
// meeting API.
type MeetingInfo struct {
	MeetingID        string
	Name             string
	Running          bool
	CreateTime       string
	ParticipantCount int
	ModeratorCount   int
}

// CreateOptions are the room-owned flags forwarded when a session is
// created.
type CreateOptions struct {
	Record                  bool
	Duration                int
	DefaultLayout           string
	AutoStartRecording      bool
	AllowStartStopRecording bool
	WelcomeMessage          string
	MaxParticipants         int
	LogoutURL               string
	ModeratorOnlyMessage    string
}

// JoinOptions bind a join to one exact session instance and one user.
// Zero values mean "omit from the request".
type JoinOptions struct {
	ConfigToken    string
	CreateTime     string
	ExternalUserID string
}

// MeetingClient executes operations against the remote meeting service.
// Every failing call returns a *RemoteError; the adapter owns the
// classification. JoinURL returning ("", nil) means the remote side refused
// the join — that is an outcome, not an error.
type MeetingClient interface {
	GetMeetingInfo(ctx context.Context, meetingID string, meta CallMeta) (*MeetingInfo, error)
	CreateMeeting(ctx context.Context, room *domain.Room, opts CreateOptions, meta CallMeta) (createTime string, err error)
	EndMeeting(ctx context.Context, meetingID, moderatorKey string, meta CallMeta) error
	FetchToken(ctx context.Context, meetingID string) (string, error)
	JoinURL(ctx context.Context, meetingID, username string, role domain.Role, opts JoinOptions) (string, error)
	FetchRecordings(ctx context.Context, meetingID string) ([]domain.Recording, error)
}

// RoomStore is the persisted side of a room, owned by the CRUD layer.
// FindByID returns ErrRoomNotFound when the record is gone; Create returns
// ErrDuplicateMeetingID when the meeting id is already taken on the server.
type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	SetCreateTime(ctx context.Context, id domain.RoomID, createTime string) error
	AddSession(ctx context.Context, s *domain.Session) error
	FinishSessions(ctx context.Context, id domain.RoomID) error
	Delete(ctx context.Context, id domain.RoomID) error
}

// StatusSnapshot is an immutable view of the last successful status fetch
// for a room. It is advisory: the remote service stays the source of truth
// and the snapshot is rebuilt on the next check.
type StatusSnapshot struct {
	Running    bool      `json:"running"`
	CreateTime string    `json:"create_time"`
	Token      string    `json:"token"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// StatusCache holds transient per-room snapshots. Get reports a miss via
// ok=false; an expired or missing entry is not an error.
type StatusCache interface {
	Put(ctx context.Context, id domain.RoomID, snap StatusSnapshot) error
	Get(ctx context.Context, id domain.RoomID) (snap StatusSnapshot, ok bool, err error)
	Drop(ctx context.Context, id domain.RoomID) error
}

// AccessPolicy answers whether a role may start a new session in a room.
// Callers pass the already-resolved role; policy never re-derives it.
type AccessPolicy interface {
	CanCreate(room *domain.Room, role domain.Role) bool
}

// Scheduler enqueues exactly one future reconciliation pass per call.
// The pass is best-effort and never retried by the queue.
type Scheduler interface {
	ScheduleReconcile(ctx context.Context, id domain.RoomID, delay time.Duration) error
}
