package audit

import (
	"context"
	"errors"
	"testing"
)

type failingRecorder struct {
	calls int
}

func (f *failingRecorder) Record(context.Context, Event) error {
	f.calls++
	return errors.New("db down")
}

func TestRecordOrWarnSwallowsErrors(t *testing.T) {
	rec := &failingRecorder{}
	RecordOrWarn(context.Background(), rec, Event{Action: ActionInsert, Table: "employee"})
	if rec.calls != 1 {
		t.Fatalf("expected one record call, got %d", rec.calls)
	}
	RecordOrWarn(context.Background(), nil, Event{})
}

func TestSnapshot(t *testing.T) {
	raw, err := snapshot(nil)
	if err != nil || raw != nil {
		t.Fatalf("expected nil snapshot, got %q %v", raw, err)
	}
	raw, err = snapshot(map[string]int{"emp_id": 3})
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if string(raw) != `{"emp_id":3}` {
		t.Fatalf("unexpected snapshot %s", raw)
	}
}

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{Name: "asha", RequestID: "r1"})
	if got := ActorFrom(ctx); got.Name != "asha" || got.RequestID != "r1" {
		t.Fatalf("unexpected actor %+v", got)
	}
	if got := ActorFrom(context.Background()); got.Name != "" {
		t.Fatalf("expected empty actor, got %+v", got)
	}
}

func TestFilterWhere(t *testing.T) {
	empID := int64(4)
	tests := []struct {
		name   string
		filter Filter
		where  string
		args   int
	}{
		{name: "empty", filter: Filter{}, where: "", args: 0},
		{name: "employee", filter: Filter{EmpID: &empID}, where: " WHERE emp_id = $1", args: 1},
		{name: "all", filter: Filter{EmpID: &empID, Action: "delete", Table: "employee"},
			where: " WHERE emp_id = $1 AND action = $2 AND table_name = $3", args: 3},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			where, args := tc.filter.where()
			if where != tc.where {
				t.Fatalf("expected %q, got %q", tc.where, where)
			}
			if len(args) != tc.args {
				t.Fatalf("expected %d args, got %d", tc.args, len(args))
			}
		})
	}
}
