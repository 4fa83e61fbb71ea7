// Package app wires the room session lifecycle: joining users into remote
// sessions, ending them, and reconciling local state with the remote side.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

// DeviceHints describe the calling client, resolved by the HTTP layer.
// ForceDesktop wins over MobileClient when composing the final URL scheme.
type DeviceHints struct {
	MobileClient bool
	AutoJoin     bool
	ForceDesktop bool
}

type Orchestrator struct {
	Client core.MeetingClient
	Store  core.RoomStore
	Cache  core.StatusCache
	Policy core.AccessPolicy
	Sched  core.Scheduler

	ReconcileDelay time.Duration
	MobileScheme   string
}

// refreshStatus performs a fresh remote status fetch and returns an
// immutable snapshot. A remote "not found" means the service has no record
// of the meeting, which for status purposes is simply not running; every
// other classified failure propagates to the caller. The snapshot is also
// written to the cache, best effort.
func (o *Orchestrator) refreshStatus(ctx context.Context, room *domain.Room, meta core.CallMeta) (core.StatusSnapshot, error) {
	info, err := o.Client.GetMeetingInfo(ctx, room.MeetingID, meta)
	if err != nil {
		var re *core.RemoteError
		if errors.As(err, &re) && re.Kind == core.RemoteNotFound {
			snap := core.StatusSnapshot{Running: false, FetchedAt: time.Now()}
			o.putStatus(ctx, room.ID, snap)
			return snap, nil
		}
		return core.StatusSnapshot{}, err
	}
	snap := core.StatusSnapshot{
		Running:    info.Running,
		CreateTime: info.CreateTime,
		FetchedAt:  time.Now(),
	}
	o.putStatus(ctx, room.ID, snap)
	return snap, nil
}

func (o *Orchestrator) putStatus(ctx context.Context, id domain.RoomID, snap core.StatusSnapshot) {
	if o.Cache == nil {
		return
	}
	if err := o.Cache.Put(ctx, id, snap); err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("room", string(id)).Msg("status cache write failed")
	}
}

// deniedFromRemote converts a remote call failure into a join denial with
// a display-safe message.
func deniedFromRemote(err error) core.JoinResult {
	return core.Denied(core.DenyRemoteError, remoteMessage(err))
}
