package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

// Join ensures a remote session exists for the room, negotiates a join
// token and returns a redirect URL or a classified denial. The remote calls
// run strictly in order: status check, optional create, token fetch, join
// URL. Create is invoked at most once per attempt and only after the status
// check reported not running; two concurrent joins may still both create,
// which is left to the remote side's own idempotency.
func (o *Orchestrator) Join(ctx context.Context, room *domain.Room, username string, role domain.Role, externalID string, dev DeviceHints, meta core.CallMeta) core.JoinResult {
	if role != domain.RoleAttendee && role != domain.RoleModerator {
		return core.Denied(core.DenyAccess, "access denied")
	}
	// A session nobody can join must never be created for a nameless user.
	if strings.TrimSpace(username) == "" {
		return core.Denied(core.DenyAccess, "a user name is required to join")
	}

	snap, err := o.refreshStatus(ctx, room, meta)
	if err != nil {
		return deniedFromRemote(err)
	}

	if !snap.Running {
		if !o.Policy.CanCreate(room, role) {
			return core.Denied(core.DenyCannotCreate, "you are not allowed to create this meeting")
		}
		createTime, err := o.Client.CreateMeeting(ctx, room, createOptions(room), meta)
		if err != nil {
			return deniedFromRemote(err)
		}
		o.recordNewSession(ctx, room, createTime, username)
	}

	token, err := o.Client.FetchToken(ctx, room.MeetingID)
	if err != nil {
		return deniedFromRemote(err)
	}
	if token != "" {
		o.putStatus(ctx, room.ID, core.StatusSnapshot{
			Running: true, CreateTime: room.CreateTime, Token: token, FetchedAt: time.Now(),
		})
	}

	opts := core.JoinOptions{
		ConfigToken:    token,
		CreateTime:     room.CreateTime,
		ExternalUserID: externalID,
	}
	url, err := o.Client.JoinURL(ctx, room.MeetingID, username, role, opts)
	if err != nil {
		return deniedFromRemote(err)
	}
	// An empty URL with no error means the remote side refused the join,
	// typically because the session stopped running since the check above.
	if url == "" {
		return core.Denied(core.DenyNotRunning, "the meeting is not running")
	}

	if dev.MobileClient && !dev.ForceDesktop {
		if mobile, err := SwapScheme(url, o.MobileScheme); err == nil {
			url = mobile
		} else {
			log.Warn().Err(err).Str("module", "app.orch").Msg("scheme swap failed, using original url")
		}
	}
	return core.Redirect(url)
}

// recordNewSession persists the fresh createTime and tracks the session,
// then schedules the delayed liveness re-check. Persistence failures do not
// fail the join: the in-memory createTime still binds this attempt.
func (o *Orchestrator) recordNewSession(ctx context.Context, room *domain.Room, createTime, username string) {
	room.CreateTime = createTime
	if err := o.Store.SetCreateTime(ctx, room.ID, createTime); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(room.ID)).Msg("failed to persist create time")
	}
	if err := o.Store.AddSession(ctx, &domain.Session{
		ID:         uuid.NewString(),
		RoomID:     room.ID,
		MeetingID:  room.MeetingID,
		CreateTime: createTime,
		StartedAt:  time.Now(),
	}); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(room.ID)).Msg("failed to track session")
	}
	log.Info().Str("module", "app.orch").
		Str("meeting_id", room.MeetingID).
		Str("room", string(room.ID)).
		Str("created_by", username).
		Msg("meeting created")

	o.scheduleReconcile(ctx, room.ID)
}

func (o *Orchestrator) scheduleReconcile(ctx context.Context, id domain.RoomID) {
	if o.Sched == nil {
		return
	}
	if err := o.Sched.ScheduleReconcile(ctx, id, o.ReconcileDelay); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(id)).Msg("failed to schedule reconcile")
	}
}

func createOptions(room *domain.Room) core.CreateOptions {
	return core.CreateOptions{
		Record:                  room.RecordMeeting,
		Duration:                room.Duration,
		DefaultLayout:           room.DefaultLayout,
		AutoStartRecording:      room.AutoStartRecording,
		AllowStartStopRecording: room.AllowStartStopRecording,
		WelcomeMessage:          room.WelcomeMessage,
		ModeratorOnlyMessage:    room.ModeratorOnlyMessage,
		MaxParticipants:         room.MaxParticipants,
		LogoutURL:               room.LogoutURL,
	}
}
