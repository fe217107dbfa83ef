package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

// toolConfigQuery prefers the organization's own row and falls back to the
// shared default row, whose organization_id is NULL.
func toolConfigQuery(organizationID, tool string) (string, []any, error) {
	return psql.Select("prompts", "temperature", "top_p").
		From(tableToolConfigs).
		Where(sq.Eq{"tool": tool}).
		Where(sq.Or{
			sq.Eq{"organization_id": organizationID},
			sq.Eq{"organization_id": nil},
		}).
		OrderBy("organization_id NULLS LAST").
		Limit(1).
		ToSql()
}

// GetToolConfig loads the prompts and sampling parameters of a tool.
func (db *DB) GetToolConfig(ctx context.Context, organizationID, tool string) (domain.ToolConfig, error) {
	orgID, ok := canonicalID(organizationID)
	if !ok {
		return domain.ToolConfig{}, fmt.Errorf("%w: invalid organization id %q", apperrors.ErrConfigNotFound, organizationID)
	}

	query, args, err := toolConfigQuery(orgID, tool)
	if err != nil {
		return domain.ToolConfig{}, fmt.Errorf("build tool config lookup: %w", err)
	}

	var (
		prompts     []byte
		temperature pgtype.Float4
		topP        pgtype.Float4
	)

	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&prompts, &temperature, &topP); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ToolConfig{}, fmt.Errorf("%w: tool %s", apperrors.ErrConfigNotFound, tool)
		}

		return domain.ToolConfig{}, fmt.Errorf("get tool config: %w", err)
	}

	return decodeToolConfig(prompts, temperature, topP)
}

func decodeToolConfig(prompts []byte, temperature, topP pgtype.Float4) (domain.ToolConfig, error) {
	cfg := domain.ToolConfig{
		Temperature: fromFloat4(temperature, DefaultTemperature),
		TopP:        fromFloat4(topP, DefaultTopP),
	}

	if len(prompts) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(prompts, &cfg.Prompts); err != nil {
		return domain.ToolConfig{}, fmt.Errorf("decode tool prompts: %w", err)
	}

	return cfg, nil
}
