package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Entry is an audit_log row as read back for review.
type Entry struct {
	ID        int64           `json:"id"`
	EmpID     *int64          `json:"empId"`
	Action    string          `json:"action"`
	Table     string          `json:"table"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Actor     string          `json:"actor"`
	RequestID string          `json:"requestId"`
	Timestamp time.Time       `json:"timestamp"`
}

type Filter struct {
	EmpID  *int64
	Action string
	Table  string
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.EmpID != nil {
		add("emp_id = ?", *f.EmpID)
	}
	if f.Action != "" {
		add("action = ?", strings.ToUpper(f.Action))
	}
	if f.Table != "" {
		add("table_name = ?", f.Table)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where()
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_log"+where, args...).Scan(&total)
	return total, err
}

// List returns the newest entries first. Snapshots are only loaded when withData is set.
func (s *Service) List(ctx context.Context, filter Filter, withData bool, limit, offset int) ([]Entry, error) {
	where, args := filter.where()
	columns := "id, emp_id, action, table_name, NULL::jsonb, NULL::jsonb, COALESCE(actor, ''), COALESCE(request_id, ''), timestamp"
	if withData {
		columns = "id, emp_id, action, table_name, old_data, new_data, COALESCE(actor, ''), COALESCE(request_id, ''), timestamp"
	}
	args = append(args, limit, offset)
	query := "SELECT " + columns + " FROM audit_log" + where +
		" ORDER BY timestamp DESC, id DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var empID *int32
		err := row.Scan(&e.ID, &empID, &e.Action, &e.Table, &e.Before, &e.After, &e.Actor, &e.RequestID, &e.Timestamp)
		if empID != nil {
			id := int64(*empID)
			e.EmpID = &id
		}
		return e, err
	})
}
