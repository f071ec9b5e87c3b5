package sqlinline

const QSelectItemByID = `--sql 15f9f03f-1299-45ba-ab68-6d2133a42bc2
select id, name, description, images, created_at
from catalog_items
where id = $1::uuid
limit 1;
`

const QSelectItemsByIDs = `--sql 03f17d1b-21ee-43a3-bf61-467ad73aaa97
select id, name, description, images, created_at
from catalog_items
where id = any($1::uuid[]);
`
