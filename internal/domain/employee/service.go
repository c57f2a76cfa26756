package employee

import (
	"context"
	"errors"

	"hrportal/internal/domain/audit"
)

const (
	tableEmployee     = "employee"
	tableProfessional = "professional_info"
)

// Service wraps the store and writes an audit_log row for every mutation.
type Service struct {
	Store StoreAPI
	Audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{Store: store, Audit: recorder}
}

func (s *Service) Create(ctx context.Context, e Employee) (*Employee, error) {
	id, err := s.Store.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	created, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, audit.ActionInsert, tableEmployee, nil, created)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]EmployeeWithProfessional, error) {
	return s.Store.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, e Employee) (*Employee, error) {
	before, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Update(ctx, id, e); err != nil {
		return nil, err
	}
	after, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, audit.ActionUpdate, tableEmployee, before, after)
	return after, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	before, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	prof, err := s.Store.GetProfessional(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, id, audit.ActionDelete, tableEmployee, before, nil)
	if prof != nil {
		s.record(ctx, id, audit.ActionDelete, tableProfessional, prof, nil)
	}
	return nil
}

// UpsertProfessional creates or replaces the professional record of an existing employee.
func (s *Service) UpsertProfessional(ctx context.Context, empID int64, p ProfessionalInfo) (*ProfessionalInfo, error) {
	if _, err := s.Store.Get(ctx, empID); err != nil {
		return nil, err
	}
	before, err := s.Store.GetProfessional(ctx, empID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	p.EmpID = empID
	p.Skills = NormalizeSkills(p.Skills)
	if err := s.Store.UpsertProfessional(ctx, empID, p); err != nil {
		return nil, err
	}
	after, err := s.Store.GetProfessional(ctx, empID)
	if err != nil {
		return nil, err
	}
	action := audit.ActionUpdate
	if before == nil {
		action = audit.ActionInsert
	}
	s.record(ctx, empID, action, tableProfessional, before, after)
	return after, nil
}

func (s *Service) GetProfessional(ctx context.Context, empID int64) (*ProfessionalInfo, error) {
	return s.Store.GetProfessional(ctx, empID)
}

func (s *Service) DeleteProfessional(ctx context.Context, empID int64) error {
	before, err := s.Store.GetProfessional(ctx, empID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteProfessional(ctx, empID); err != nil {
		return err
	}
	s.record(ctx, empID, audit.ActionDelete, tableProfessional, before, nil)
	return nil
}

func (s *Service) record(ctx context.Context, empID int64, action, table string, before, after any) {
	actor := audit.ActorFrom(ctx)
	id := empID
	audit.RecordOrWarn(ctx, s.Audit, audit.Event{
		EmpID:     &id,
		Action:    action,
		Table:     table,
		Actor:     actor.Name,
		RequestID: actor.RequestID,
		Before:    nilIfNone(before),
		After:     nilIfNone(after),
	})
}

// nilIfNone turns typed nil pointers into an untyped nil so they are stored as SQL NULL.
func nilIfNone(v any) any {
	switch t := v.(type) {
	case *Employee:
		if t == nil {
			return nil
		}
	case *ProfessionalInfo:
		if t == nil {
			return nil
		}
	}
	return v
}
