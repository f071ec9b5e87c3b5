package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"adforge/internal/infra"
	"adforge/internal/sqlinline"
)

// Provider keys in the integration token store.
const (
	ProviderGemini = "gemini"
	ProviderWanx   = "wanx"
	ProviderHeyGen = "heygen"
)

// Store reads and writes provider API keys persisted in the database. It is
// the fallback when a key is not supplied via environment.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored API key for the provider, or "" when none is set.
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

// SetToken upserts the API key for the provider.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	provider = strings.TrimSpace(strings.ToLower(provider))
	switch provider {
	case ProviderGemini, ProviderWanx, ProviderHeyGen:
	default:
		return errors.New("credentials: unsupported provider " + provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credentials: token is required")
	}
	raw, err := json.Marshal(map[string]any{})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
