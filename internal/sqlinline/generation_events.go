package sqlinline

// QInsertGenerationEvent stores metadata about one generation call. Prompt and
// generated text are deliberately absent from the table.
const QInsertGenerationEvent = `--sql 5a91d3f4-7e2c-4b08-a6d9-0f3e8c1b27d4
insert into generation_events (id, request_id, kind, model, success, error_kind, upstream_status, latency_ms, locale, country, created_at)
values (gen_random_uuid(), nullif($1::text, ''), $2::text, $3::text, $4::boolean, nullif($5::text, ''), nullif($6::int, 0), $7::int, nullif($8::text, ''), nullif($9::text, ''), now());
`
