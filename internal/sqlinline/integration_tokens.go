package sqlinline

const QSelectIntegrationToken = `--sql d9eaaba6-5b05-4414-b98f-87a5a820e53c
select token
from integration_tokens
where provider = $1
limit 1;
`

const QUpsertIntegrationToken = `--sql c00bcbdc-5fdb-4021-88ca-ef7e4efea627
insert into integration_tokens(provider, token, properties)
values ($1, $2, $3::jsonb)
on conflict (provider)
do update set token = excluded.token, properties = excluded.properties, updated_at = now();
`
