package trainer

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateProfileRequest) (*Profile, error)
	GetByID(ctx context.Context, id int) (*Profile, error)
	ListAccepting(ctx context.Context) ([]ProfileWithName, error)
	SetAcceptingClients(ctx context.Context, id int, accepting bool) error
}
