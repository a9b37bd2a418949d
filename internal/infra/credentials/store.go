package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ecomagent/internal/infra"
	"ecomagent/internal/sqlinline"
)

const ProviderGroq = "groq"

// Store persists provider API keys in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// GroqAPIKey returns the stored key, or "" when none has been saved.
func (s *Store) GroqAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGroq)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGroqAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("groq api key is required")
	}
	return s.upsert(ctx, ProviderGroq, key, map[string]any{"rotated_at": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
