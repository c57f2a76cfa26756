package employee

import "context"

type StoreAPI interface {
	Create(ctx context.Context, e Employee) (int64, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context) ([]EmployeeWithProfessional, error)
	Update(ctx context.Context, id int64, e Employee) error
	Delete(ctx context.Context, id int64) error
	UpsertProfessional(ctx context.Context, empID int64, p ProfessionalInfo) error
	GetProfessional(ctx context.Context, empID int64) (*ProfessionalInfo, error)
	DeleteProfessional(ctx context.Context, empID int64) error
}
