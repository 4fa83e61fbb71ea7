package app

import (
	"context"
	"errors"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

var ErrNoServer = errors.New("room has no server configured")

// Running reports the room's fresh remote running state.
func (o *Orchestrator) Running(ctx context.Context, room *domain.Room, meta core.CallMeta) (bool, error) {
	snap, err := o.refreshStatus(ctx, room, meta)
	if err != nil {
		return false, err
	}
	return snap.Running, nil
}

// FetchRecordings lists the recordings the remote side holds for this
// room's meeting id only.
func (o *Orchestrator) FetchRecordings(ctx context.Context, room *domain.Room) ([]domain.Recording, error) {
	if room.ServerID == "" {
		return nil, ErrNoServer
	}
	return o.Client.FetchRecordings(ctx, room.MeetingID)
}
