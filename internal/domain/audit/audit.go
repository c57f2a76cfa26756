package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Event is one append-only audit_log row.
type Event struct {
	EmpID     *int64
	Action    string
	Table     string
	Actor     string
	RequestID string
	Before    any
	After     any
}

type Recorder interface {
	Record(ctx context.Context, evt Event) error
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event) error {
	beforeJSON, err := snapshot(evt.Before)
	if err != nil {
		return err
	}
	afterJSON, err := snapshot(evt.After)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_log (emp_id, action, table_name, old_data, new_data, actor, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, evt.EmpID, evt.Action, evt.Table, beforeJSON, afterJSON, nullIfEmpty(evt.Actor), nullIfEmpty(evt.RequestID))
	return err
}

// RecordOrWarn writes the event and only logs a failure; the audited mutation has already happened.
func RecordOrWarn(ctx context.Context, rec Recorder, evt Event) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, evt); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"action":    evt.Action,
			"table":     evt.Table,
			"requestId": evt.RequestID,
		}).Warn("audit log insert failed")
	}
}

func snapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

type actorKey struct{}

// Actor carries who performed a mutation and under which request.
type Actor struct {
	Name      string
	RequestID string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
