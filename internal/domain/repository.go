package domain

import "context"

// AssetUpdate carries the fields a reconciliation writeback may change.
// Nil fields are left untouched.
type AssetUpdate struct {
	Status   *AssetStatus
	AssetURL *string
	Content  *string
	ErrorMsg *string
}

// AssetRepository is the asset library sink. UpdateResult must be atomic
// per id and must refuse to rewrite a record that already left the
// processing state (compare-and-set on status).
type AssetRepository interface {
	Create(ctx context.Context, record *AssetRecord) error
	GetByID(ctx context.Context, id string) (*AssetRecord, error)
	UpdateResult(ctx context.Context, id string, update AssetUpdate) (*AssetRecord, error)
	ListByStatus(ctx context.Context, status AssetStatus, limit int) ([]AssetRecord, error)
	List(ctx context.Context, limit, offset int) ([]AssetRecord, error)
	Delete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, id string, favorite bool) error
}

// CatalogRepository provides read-only access to catalog items.
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*CatalogItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]CatalogItem, error)
}
