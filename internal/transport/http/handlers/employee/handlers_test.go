package employeehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/employee"
	"hrportal/internal/transport/http/middleware"
)

type fakeService struct {
	employees    map[int64]employee.Employee
	professional map[int64]employee.ProfessionalInfo
	nextID       int64
}

func newFakeService() *fakeService {
	return &fakeService{employees: map[int64]employee.Employee{}, professional: map[int64]employee.ProfessionalInfo{}}
}

func (f *fakeService) Create(_ context.Context, e employee.Employee) (*employee.Employee, error) {
	for _, existing := range f.employees {
		if e.Email != "" && existing.Email == e.Email {
			return nil, employee.ErrEmailExists
		}
	}
	f.nextID++
	e.ID = f.nextID
	f.employees[e.ID] = e
	return &e, nil
}

func (f *fakeService) Get(_ context.Context, id int64) (*employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return &e, nil
}

func (f *fakeService) List(context.Context) ([]employee.EmployeeWithProfessional, error) {
	out := []employee.EmployeeWithProfessional{}
	for id := int64(1); id <= f.nextID; id++ {
		e, ok := f.employees[id]
		if !ok {
			continue
		}
		row := employee.EmployeeWithProfessional{Employee: e}
		if p, ok := f.professional[id]; ok {
			row.Professional = &p
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeService) Update(_ context.Context, id int64, e employee.Employee) (*employee.Employee, error) {
	if _, ok := f.employees[id]; !ok {
		return nil, employee.ErrNotFound
	}
	e.ID = id
	f.employees[id] = e
	return &e, nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	if _, ok := f.employees[id]; !ok {
		return employee.ErrNotFound
	}
	delete(f.employees, id)
	delete(f.professional, id)
	return nil
}

func (f *fakeService) UpsertProfessional(_ context.Context, id int64, p employee.ProfessionalInfo) (*employee.ProfessionalInfo, error) {
	if _, ok := f.employees[id]; !ok {
		return nil, employee.ErrNotFound
	}
	p.EmpID = id
	f.professional[id] = p
	return &p, nil
}

func (f *fakeService) GetProfessional(_ context.Context, id int64) (*employee.ProfessionalInfo, error) {
	p, ok := f.professional[id]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return &p, nil
}

func (f *fakeService) DeleteProfessional(_ context.Context, id int64) error {
	if _, ok := f.professional[id]; !ok {
		return employee.ErrNotFound
	}
	delete(f.professional, id)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func newRouter(svc Service, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{AccountID: 1, Username: role, Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env
}

func TestEmployeeLifecycle(t *testing.T) {
	svc := newFakeService()
	h := newRouter(svc, auth.RoleEditor)

	status, env := do(t, h, http.MethodPost, "/employees", map[string]any{
		"firstName": " Asha ", "lastName": "Rao", "gender": "female", "email": "ASHA@example.com",
		"dob": "1990-05-01", "hireDate": "2020-01-15",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", status, env.Error)
	}
	created := svc.employees[1]
	if created.FirstName != "Asha" || created.Gender != employee.GenderFemale || created.Email != "asha@example.com" {
		t.Fatalf("expected normalized employee, got %+v", created)
	}

	salary := 75000.0
	status, env = do(t, h, http.MethodPut, "/employees/1/professional", map[string]any{
		"department": "Finance", "currentSalary": salary, "skills": []string{"Go", " go ", "SQL"}, "lastIncrement": "2024-04-01",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", status, env.Error)
	}
	if got := svc.professional[1].Skills; len(got) != 2 {
		t.Fatalf("expected deduplicated skills, got %v", got)
	}

	status, _ = do(t, h, http.MethodGet, "/employees", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	status, _ = do(t, h, http.MethodDelete, "/employees/1", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	status, env = do(t, h, http.MethodGet, "/employees/1/professional", nil)
	if status != http.StatusNotFound || env.Error.Code != "not_found" {
		t.Fatalf("expected professional info to be gone, got %d", status)
	}
}

func TestEmployeeValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		fields []string
	}{
		{name: "missing names", body: map[string]any{}, fields: []string{"firstName", "lastName"}},
		{name: "bad gender", body: map[string]any{"firstName": "a", "lastName": "b", "gender": "robot"}, fields: []string{"gender"}},
		{name: "bad date", body: map[string]any{"firstName": "a", "lastName": "b", "dob": "01/02/1990"}, fields: []string{"dob"}},
		{name: "hired before birth", body: map[string]any{"firstName": "a", "lastName": "b", "dob": "2000-01-01", "hireDate": "1999-01-01"},
			fields: []string{"dob", "hireDate"}},
		{name: "bad email", body: map[string]any{"firstName": "a", "lastName": "b", "email": "nope"}, fields: []string{"email"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			status, env := do(t, newRouter(newFakeService(), auth.RoleEditor), http.MethodPost, "/employees", tc.body)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			got := map[string]bool{}
			for _, f := range env.Error.Details.Fields {
				got[f.Field] = true
			}
			for _, field := range tc.fields {
				if !got[field] {
					t.Fatalf("expected issue for %s, got %+v", field, env.Error.Details.Fields)
				}
			}
		})
	}
}

func TestProfessionalValidation(t *testing.T) {
	svc := newFakeService()
	svc.employees[1] = employee.Employee{ID: 1}
	svc.nextID = 1
	h := newRouter(svc, auth.RoleEditor)

	status, _ := do(t, h, http.MethodPut, "/employees/1/professional", map[string]any{"currentSalary": -1, "performanceRating": 7})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	status, _ = do(t, h, http.MethodPut, "/employees/9/professional", map[string]any{"department": "Ops"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown employee, got %d", status)
	}
	status, _ = do(t, h, http.MethodGet, "/employees/abc", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", status)
	}
}

func TestProfessionalSalaryOverflowRejected(t *testing.T) {
	svc := newFakeService()
	svc.employees[1] = employee.Employee{ID: 1}
	h := newRouter(svc, auth.RoleEditor)

	status, env := do(t, h, http.MethodPut, "/employees/1/professional", map[string]any{
		"currentSalary": 1e12, "previousSalary": employee.MaxSalary,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	if fields := env.Error.Details.Fields; len(fields) != 1 || fields[0].Field != "currentSalary" {
		t.Fatalf("expected only currentSalary to be flagged, got %+v", fields)
	}
	if _, stored := svc.professional[1]; stored {
		t.Fatal("an out-of-range salary must not reach the store")
	}
}

func TestViewerCannotWrite(t *testing.T) {
	h := newRouter(newFakeService(), auth.RoleViewer)
	status, env := do(t, h, http.MethodPost, "/employees", map[string]any{"firstName": "a", "lastName": "b"})
	if status != http.StatusForbidden || env.Error.Code != "forbidden" {
		t.Fatalf("expected 403, got %d", status)
	}
	status, _ = do(t, h, http.MethodGet, "/employees", nil)
	if status != http.StatusOK {
		t.Fatalf("expected viewer to read, got %d", status)
	}
}

func TestDuplicateEmail(t *testing.T) {
	h := newRouter(newFakeService(), auth.RoleEditor)
	body := map[string]any{"firstName": "a", "lastName": "b", "email": "a@example.com"}
	if status, _ := do(t, h, http.MethodPost, "/employees", body); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	status, env := do(t, h, http.MethodPost, "/employees", body)
	if status != http.StatusConflict || env.Error.Code != "email_exists" {
		t.Fatalf("expected 409, got %d", status)
	}
}
