// Package sched schedules the delayed reconcile passes on asynq. One task
// per triggering event, no retries: the pass itself decides what a failure
// means.
package sched

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/domain"
)

const TypeRoomReconcile = "room:reconcile"

type ReconcilePayload struct {
	RoomID domain.RoomID `json:"room_id"`
}

type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(redisOpt)}
}

// ScheduleReconcile enqueues exactly one future check for the room.
// MaxRetry(0) keeps the queue from re-running a pass the orchestrator
// treats as one-shot.
func (s *Scheduler) ScheduleReconcile(ctx context.Context, id domain.RoomID, delay time.Duration) error {
	payload, err := json.Marshal(ReconcilePayload{RoomID: id})
	if err != nil {
		return fmt.Errorf("sched: marshal reconcile payload: %w", err)
	}
	task := asynq.NewTask(TypeRoomReconcile, payload)
	info, err := s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("sched: enqueue reconcile for room %s: %w", id, err)
	}
	log.Debug().Str("module", "adapters.sched").
		Str("room", string(id)).
		Str("task_id", info.ID).
		Dur("delay", delay).
		Msg("reconcile scheduled")
	return nil
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}
