package repo

import (
	"context"

	"adforge/internal/domain"
	"adforge/internal/infra"
	"adforge/internal/sqlinline"
)

// CatalogRepositoryPG implements read-only access to catalog items. The
// orchestrator never mutates catalog data.
type CatalogRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCatalogRepository constructs a new catalog repository instance.
func NewCatalogRepository(sql infra.SQLExecutor) *CatalogRepositoryPG {
	return &CatalogRepositoryPG{sql: sql}
}

// GetByID fetches one catalog item.
func (r *CatalogRepositoryPG) GetByID(ctx context.Context, id string) (*domain.CatalogItem, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectItemByID, id)
	var item domain.CatalogItem
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Images, &item.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDs fetches the catalog items for the given ids. Missing ids are
// simply absent from the result; the caller decides how to report them.
func (r *CatalogRepositoryPG) GetByIDs(ctx context.Context, ids []string) ([]domain.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectItemsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Images, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.CatalogRepository = (*CatalogRepositoryPG)(nil)
