package settings

import "context"

// Repository defines key/value store settings storage.
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}
