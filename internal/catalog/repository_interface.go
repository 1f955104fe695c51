package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateServiceRequest) (*Service, error)
	GetByID(ctx context.Context, id int) (*Service, error)
	List(ctx context.Context, filter ListFilter) ([]Service, error)
	Update(ctx context.Context, id int, req UpdateServiceRequest) (*Service, error)
	Deactivate(ctx context.Context, id int) error
}
