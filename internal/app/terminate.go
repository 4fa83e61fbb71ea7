package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

// End stops the room's running session without touching the local record.
// Not running and remote failures are non-fatal outcomes reported through
// the message; nothing durable is mutated either way.
func (o *Orchestrator) End(ctx context.Context, room *domain.Room, meta core.CallMeta) (bool, string) {
	snap, err := o.refreshStatus(ctx, room, meta)
	if err != nil {
		return false, remoteMessage(err)
	}
	if !snap.Running {
		return false, "the meeting could not be ended because it is not running"
	}
	if err := o.Client.EndMeeting(ctx, room.MeetingID, room.ModeratorKey, meta); err != nil {
		return false, remoteMessage(err)
	}
	o.putStatus(ctx, room.ID, core.StatusSnapshot{Running: false, CreateTime: room.CreateTime, FetchedAt: time.Now()})
	o.scheduleReconcile(ctx, room.ID)
	log.Info().Str("module", "app.orch").Str("meeting_id", room.MeetingID).Msg("meeting ended")
	return true, "the meeting was successfully ended"
}

// Terminate ends any running session best-effort and removes the local
// room record unconditionally: a flaky remote dependency must never block
// a local destroy. The flag and message report whether the remote side
// cooperated.
func (o *Orchestrator) Terminate(ctx context.Context, room *domain.Room, meta core.CallMeta) (bool, string) {
	success := true
	message := "the room was destroyed"

	snap, err := o.refreshStatus(ctx, room, meta)
	if err == nil && snap.Running {
		err = o.Client.EndMeeting(ctx, room.MeetingID, room.ModeratorKey, meta)
	}
	if err != nil {
		success = false
		message = "the room was destroyed, but the remote session could not be ended: " + remoteMessage(err)
		log.Warn().Err(err).Str("module", "app.orch").Str("room", string(room.ID)).Msg("remote cleanup failed during destroy")
	}

	if err := o.Store.Delete(ctx, room.ID); err != nil {
		return false, "failed to remove the room"
	}
	if o.Cache != nil {
		if err := o.Cache.Drop(ctx, room.ID); err != nil {
			log.Warn().Err(err).Str("module", "app.orch").Str("room", string(room.ID)).Msg("status cache drop failed")
		}
	}
	return success, message
}

// remoteMessage renders any error from a remote call site bounded for
// display.
func remoteMessage(err error) string {
	var re *core.RemoteError
	if errors.As(err, &re) {
		return re.UserMessage()
	}
	return core.TruncateMessage(err.Error())
}
