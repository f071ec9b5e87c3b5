package sqlinline

const QInsertAsset = `--sql 84f4b55a-d4f6-495e-b108-de7d2ec30243
insert into assets(
  id,
  item_id,
  content_type,
  provider,
  status,
  asset_url,
  content,
  instruction,
  error_msg
)
values ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9);
`

const QSelectAssetByID = `--sql 259971cb-3ac3-492f-b893-cdcd65b62c12
select id, item_id, content_type, provider, status, asset_url, content, instruction, error_msg, favorite, created_at, updated_at
from assets
where id = $1::uuid
limit 1;
`

// QUpdateAssetResult transitions a processing record to its terminal state.
// The status guard makes the writeback a compare-and-set: terminal records
// are never rewritten, and concurrent reconcilers cannot race each other.
const QUpdateAssetResult = `--sql a6c3c1e7-71f0-4331-9fe1-77cbfa0addb7
update assets
set status     = coalesce($2, status),
    asset_url  = coalesce($3, asset_url),
    content    = coalesce($4, content),
    error_msg  = coalesce($5, error_msg),
    updated_at = now()
where id = $1::uuid
  and status = 'processing'
returning id, item_id, content_type, provider, status, asset_url, content, instruction, error_msg, favorite, created_at, updated_at;
`

const QListAssetsByStatus = `--sql 0ebab813-9ca9-4ed7-9fa5-dd8a0b37c46a
select id, item_id, content_type, provider, status, asset_url, content, instruction, error_msg, favorite, created_at, updated_at
from assets
where status = $1
order by created_at asc
limit $2::int;
`

const QListAssets = `--sql 01834eaf-69d6-4bba-914b-50d310173462
select id, item_id, content_type, provider, status, asset_url, content, instruction, error_msg, favorite, created_at, updated_at
from assets
order by created_at desc
limit $1::int offset $2::int;
`

const QDeleteAsset = `--sql 6852a397-0680-43e9-a8e9-68184b2f498b
delete from assets
where id = $1::uuid;
`

const QSetAssetFavorite = `--sql 52ace697-8147-47db-8cce-3b4b514a8700
update assets
set favorite = $2, updated_at = now()
where id = $1::uuid;
`
