package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const employeeColumns = `emp_id, first_name, last_name, dob, COALESCE(gender, ''), COALESCE(email, ''),
       COALESCE(phone, ''), hire_date, created_at, updated_at`

const professionalColumns = `emp_id, COALESCE(designation, ''), COALESCE(department, ''), current_salary::float8,
       previous_salary::float8, last_increment, skills, performance_rating::float8, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, e Employee) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee (first_name, last_name, dob, gender, email, phone, hire_date)
    VALUES ($1,$2,$3,$4,$5,$6,COALESCE($7, CURRENT_DATE))
    RETURNING emp_id
  `, e.FirstName, e.LastName, e.DOB, nullIfEmpty(e.Gender), nullIfEmpty(e.Email), nullIfEmpty(e.Phone), e.HireDate).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employee WHERE emp_id = $1", id)
	e, err := scanEmployee(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context) ([]EmployeeWithProfessional, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.emp_id, e.first_name, e.last_name, e.dob, COALESCE(e.gender, ''), COALESCE(e.email, ''),
           COALESCE(e.phone, ''), e.hire_date, e.created_at, e.updated_at,
           p.emp_id, COALESCE(p.designation, ''), COALESCE(p.department, ''), p.current_salary::float8,
           p.previous_salary::float8, p.last_increment, p.skills, p.performance_rating::float8, p.updated_at
    FROM employee e
    LEFT JOIN professional_info p ON p.emp_id = e.emp_id
    ORDER BY e.emp_id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EmployeeWithProfessional, 0)
	for rows.Next() {
		var item EmployeeWithProfessional
		var profID *int64
		var prof ProfessionalInfo
		var profUpdated *time.Time
		if err := rows.Scan(
			&item.ID, &item.FirstName, &item.LastName, &item.DOB, &item.Gender, &item.Email,
			&item.Phone, &item.HireDate, &item.CreatedAt, &item.UpdatedAt,
			&profID, &prof.Designation, &prof.Department, &prof.CurrentSalary,
			&prof.PreviousSalary, &prof.LastIncrement, &prof.Skills, &prof.PerformanceRating, &profUpdated,
		); err != nil {
			return nil, err
		}
		if profID != nil {
			prof.EmpID = *profID
			if profUpdated != nil {
				prof.UpdatedAt = *profUpdated
			}
			if prof.Skills == nil {
				prof.Skills = []string{}
			}
			item.Professional = &prof
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, e Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee
    SET first_name = $2, last_name = $3, dob = $4, gender = $5, email = $6, phone = $7,
        hire_date = COALESCE($8, hire_date), updated_at = now()
    WHERE emp_id = $1
  `, id, e.FirstName, e.LastName, e.DOB, nullIfEmpty(e.Gender), nullIfEmpty(e.Email), nullIfEmpty(e.Phone), e.HireDate)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the employee; professional_info goes with it through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employee WHERE emp_id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpsertProfessional(ctx context.Context, empID int64, p ProfessionalInfo) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO professional_info (emp_id, designation, department, current_salary, previous_salary,
                                   last_increment, skills, performance_rating)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (emp_id) DO UPDATE
    SET designation = EXCLUDED.designation,
        department = EXCLUDED.department,
        current_salary = EXCLUDED.current_salary,
        previous_salary = EXCLUDED.previous_salary,
        last_increment = EXCLUDED.last_increment,
        skills = EXCLUDED.skills,
        performance_rating = EXCLUDED.performance_rating,
        updated_at = now()
  `, empID, nullIfEmpty(p.Designation), nullIfEmpty(p.Department), p.CurrentSalary, p.PreviousSalary,
		p.LastIncrement, skills, p.PerformanceRating)
	return mapWriteError(err)
}

func (s *Store) GetProfessional(ctx context.Context, empID int64) (*ProfessionalInfo, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+professionalColumns+" FROM professional_info WHERE emp_id = $1", empID)
	var p ProfessionalInfo
	err := row.Scan(&p.EmpID, &p.Designation, &p.Department, &p.CurrentSalary, &p.PreviousSalary,
		&p.LastIncrement, &p.Skills, &p.PerformanceRating, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

func (s *Store) DeleteProfessional(ctx context.Context, empID int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM professional_info WHERE emp_id = $1", empID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.DOB, &e.Gender, &e.Email, &e.Phone, &e.HireDate, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrEmailExists
		case "23503":
			return ErrNotFound
		}
	}
	return err
}

func nullIfEmpty(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}
