package sqlinline

const QSelectIntegrationToken = `--sql 3c0f2a6e-5b1d-4e8a-9f27-61d4b0c9e7a5
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 9e4b7c21-0d6a-4f3e-8b15-c2a7f90d4e68
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
