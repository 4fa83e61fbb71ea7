package sched

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/domain"
)

// Reconciler is the unit of work a reconcile task runs.
type Reconciler interface {
	Reconcile(ctx context.Context, id domain.RoomID) error
}

// WorkerServer drives the asynq consumer side.
type WorkerServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorkerServer(redisOpt asynq.RedisClientOpt, rec Reconciler) *WorkerServer {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("module", "adapters.sched").Str("task_type", task.Type()).Msg("task failed")
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRoomReconcile, func(ctx context.Context, task *asynq.Task) error {
		var payload ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("sched: decode reconcile payload: %w", err)
		}
		return rec.Reconcile(ctx, payload.RoomID)
	})

	return &WorkerServer{server: server, mux: mux}
}

func (w *WorkerServer) Start() error {
	return w.server.Start(w.mux)
}

func (w *WorkerServer) Shutdown() {
	w.server.Shutdown()
}
