package repo

import (
	"context"

	"adforge/internal/domain"
	"adforge/internal/infra"
	"adforge/internal/sqlinline"
)

// AssetRepositoryPG implements domain.AssetRepository using PostgreSQL. The
// status guard inside the update query gives reconciliation its
// compare-and-set semantics: a row that already left processing matches
// nothing and the writeback reports a stale record.
type AssetRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(sql infra.SQLExecutor) *AssetRepositoryPG {
	return &AssetRepositoryPG{sql: sql}
}

// Create inserts a new asset record.
func (r *AssetRepositoryPG) Create(ctx context.Context, record *domain.AssetRecord) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertAsset,
		record.ID,
		record.ItemID,
		record.ContentType,
		record.Provider,
		record.Status,
		record.AssetURL,
		record.Content,
		record.Instruction,
		record.ErrorMsg,
	)
	return err
}

// GetByID fetches an asset record by its identifier.
func (r *AssetRepositoryPG) GetByID(ctx context.Context, id string) (*domain.AssetRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAssetByID, id)
	record, err := scanAsset(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// UpdateResult applies a reconciliation writeback. It only matches records
// still in the processing state; a record already in a terminal state yields
// domain.ErrStaleRecord so callers can treat the write as a no-op.
func (r *AssetRepositoryPG) UpdateResult(ctx context.Context, id string, update domain.AssetUpdate) (*domain.AssetRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateAssetResult,
		id,
		update.Status,
		update.AssetURL,
		update.Content,
		update.ErrorMsg,
	)
	record, err := scanAsset(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrStaleRecord
		}
		return nil, err
	}
	return record, nil
}

// ListByStatus returns up to limit records in the given state, oldest first.
func (r *AssetRepositoryPG) ListByStatus(ctx context.Context, status domain.AssetStatus, limit int) ([]domain.AssetRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListAssetsByStatus, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

// List returns a page of records, newest first.
func (r *AssetRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.AssetRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListAssets, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

// Delete removes a record.
func (r *AssetRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteAsset, id)
	return err
}

// SetFavorite toggles the favorite flag.
func (r *AssetRepositoryPG) SetFavorite(ctx context.Context, id string, favorite bool) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetAssetFavorite, id, favorite)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*domain.AssetRecord, error) {
	var record domain.AssetRecord
	if err := row.Scan(
		&record.ID,
		&record.ItemID,
		&record.ContentType,
		&record.Provider,
		&record.Status,
		&record.AssetURL,
		&record.Content,
		&record.Instruction,
		&record.ErrorMsg,
		&record.Favorite,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

type assetRows interface {
	Next() bool
	Err() error
	Scan(dest ...any) error
}

func collectAssets(rows assetRows) ([]domain.AssetRecord, error) {
	var records []domain.AssetRecord
	for rows.Next() {
		record, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
