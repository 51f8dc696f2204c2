// Package gateway writes finished records to durable storage in the
// background. Writes are best effort: failures are logged and counted, never
// returned to the caller and never retried.
package gateway

import (
	"context"
	"log/slog"
	"sync"

	"goalboard/internal/observability"
)

const (
	TableReviewMetadata = "review_form_metadata"
	TableGoals          = "goals"
)

// ReviewRecord is the review_form_metadata row. InitiativeID carries the id of
// the owning record, which is a project id for project submissions.
type ReviewRecord struct {
	InitiativeID    string `json:"initiative_id"`
	ISCMLevel       string `json:"iscm_level"`
	FunctionalLevel string `json:"functional_level"`
	DepartmentLevel string `json:"department_level"`
}

// GoalRecord is the goals row.
type GoalRecord struct {
	InitiativeID string `json:"initiative_id"`
	GoalYear     string `json:"goal_year"`
	StatusUpdate string `json:"status_update"`
	Driver       string `json:"driver"`
	Department   string `json:"department"`
}

// Batch is the pair of rows written for one submission.
type Batch struct {
	Kind   string
	Review ReviewRecord
	Goal   GoalRecord
}

// Sink is a durable store for gateway rows.
type Sink interface {
	InsertReviewMetadata(ctx context.Context, r ReviewRecord) error
	InsertGoal(ctx context.Context, g GoalRecord) error
}

// Discard accepts every write and stores nothing.
type Discard struct{}

func (Discard) InsertReviewMetadata(context.Context, ReviewRecord) error { return nil }
func (Discard) InsertGoal(context.Context, GoalRecord) error             { return nil }

// Gateway dispatches batches to a Sink without blocking the caller.
type Gateway struct {
	Sink    Sink
	Log     *slog.Logger
	Metrics *observability.Metrics

	wg sync.WaitGroup
}

func New(sink Sink, log *slog.Logger, metrics *observability.Metrics) *Gateway {
	if sink == nil {
		sink = Discard{}
	}
	return &Gateway{Sink: sink, Log: observability.OrDiscard(log), Metrics: metrics}
}

// Dispatch starts the writes for b and returns at once. The writes outlive
// ctx: cancelling the request that produced b does not abort them.
func (g *Gateway) Dispatch(ctx context.Context, b Batch) {
	bg := context.WithoutCancel(ctx)
	g.wg.Add(1)
	g.Metrics.DispatchStarted()
	go func() {
		defer g.wg.Done()
		defer g.Metrics.DispatchDone()
		g.write(bg, b)
	}()
}

func (g *Gateway) write(ctx context.Context, b Batch) {
	// Both rows are attempted even when the first one fails.
	g.observe(TableReviewMetadata, b, g.Sink.InsertReviewMetadata(ctx, b.Review))
	g.observe(TableGoals, b, g.Sink.InsertGoal(ctx, b.Goal))
}

func (g *Gateway) observe(table string, b Batch, err error) {
	log := g.Log
	if log == nil {
		log = observability.Discard()
	}
	if err != nil {
		g.Metrics.GatewayWrite(table, "error")
		log.Error("gateway write failed", "table", table, "kind", b.Kind, "id", b.Goal.InitiativeID, "err", err)
		return
	}
	g.Metrics.GatewayWrite(table, "ok")
	log.Debug("gateway write", "table", table, "kind", b.Kind, "id", b.Goal.InitiativeID)
}

// Wait blocks until every dispatched batch has been written or has failed.
func (g *Gateway) Wait() {
	g.wg.Wait()
}
