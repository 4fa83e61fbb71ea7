package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

// Reconcile is the delayed, one-shot liveness re-check scheduled after a
// session-affecting action. It confirms the remote side still knows the
// meeting and corrects local state when it has diverged.
//
// Every remote failure, classified not-found or otherwise, concludes that
// the session is over: the pass never retries, and a stuck "running" flag
// is worse than a false "finished". A room deleted between scheduling and
// execution is a silent no-op.
func (o *Orchestrator) Reconcile(ctx context.Context, id domain.RoomID) error {
	room, err := o.Store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			log.Debug().Str("module", "app.reconcile").Str("room", string(id)).Msg("room gone before reconcile, skipping")
			return nil
		}
		return err
	}

	info, err := o.Client.GetMeetingInfo(ctx, room.MeetingID, core.CallMeta{})
	if err != nil {
		var re *core.RemoteError
		if errors.As(err, &re) && re.Kind == core.RemoteNotFound {
			log.Info().Str("module", "app.reconcile").Str("room", string(id)).Msg("meeting unknown remotely, finishing sessions")
		} else {
			log.Warn().Err(err).Str("module", "app.reconcile").Str("room", string(id)).Msg("status fetch failed, assuming session ended")
		}
		o.finishSessions(ctx, id, room.CreateTime)
		return nil
	}

	o.putStatus(ctx, id, core.StatusSnapshot{
		Running:    info.Running,
		CreateTime: info.CreateTime,
		FetchedAt:  time.Now(),
	})
	return nil
}

func (o *Orchestrator) finishSessions(ctx context.Context, id domain.RoomID, createTime string) {
	if err := o.Store.FinishSessions(ctx, id); err != nil {
		log.Error().Err(err).Str("module", "app.reconcile").Str("room", string(id)).Msg("failed to finish sessions")
	}
	o.putStatus(ctx, id, core.StatusSnapshot{Running: false, CreateTime: createTime, FetchedAt: time.Now()})
}
