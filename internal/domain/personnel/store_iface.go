package personnel

import "context"

type StoreAPI interface {
	Create(ctx context.Context, doc Document) (*Document, error)
	Get(ctx context.Context, hexID string) (*Document, error)
	List(ctx context.Context, filter Filter) ([]Document, error)
	Update(ctx context.Context, hexID string, doc Document) (*Document, error)
	Delete(ctx context.Context, hexID string) error
	UpsertQualifications(ctx context.Context, employeeID int64, rec QualificationRecord) (*QualificationRecord, error)
	GetQualifications(ctx context.Context, employeeID int64) (*QualificationRecord, error)
}

var _ StoreAPI = (*Store)(nil)
