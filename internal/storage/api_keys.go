package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

func apiKeyQuery(organizationID, provider string) (string, []any, error) {
	return psql.Select("key").
		From(tableAPIKeys).
		Where(sq.Eq{
			"organization_id": organizationID,
			"provider":        strings.ToLower(strings.TrimSpace(provider)),
		}).
		Limit(1).
		ToSql()
}

// GetAPIKey returns the organization's key for provider. A missing row is
// ErrAPIKeyNotFound; a blank key is ErrAPIKeyEmpty.
func (db *DB) GetAPIKey(ctx context.Context, organizationID, provider string) (string, error) {
	orgID, ok := canonicalID(organizationID)
	if !ok {
		return "", fmt.Errorf("%w: invalid organization id %q", apperrors.ErrAPIKeyNotFound, organizationID)
	}

	query, args, err := apiKeyQuery(orgID, provider)
	if err != nil {
		return "", fmt.Errorf("build api key lookup: %w", err)
	}

	var key pgtype.Text

	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: provider %s", apperrors.ErrAPIKeyNotFound, provider)
		}

		return "", fmt.Errorf("get api key: %w", err)
	}

	return checkAPIKey(fromText(key), provider)
}

func checkAPIKey(key, provider string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: provider %s", apperrors.ErrAPIKeyEmpty, provider)
	}

	return key, nil
}
