package core

import "context"

// Repository is the storage contract shared by every entity.
type Repository[T any] interface {
	List(ctx context.Context, q ListQuery) (Page[T], error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, obj T) (T, error)
	Update(ctx context.Context, obj T) (T, error)
}

// Deleter is implemented by repositories whose records can be hard deleted.
type Deleter interface {
	Delete(ctx context.Context, ids ...int64) error
}
