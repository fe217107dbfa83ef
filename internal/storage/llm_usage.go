package db

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const llmUsageUpsertSuffix = `ON CONFLICT (date, organization_id, provider, model, task)
DO UPDATE SET
	prompt_tokens = llm_usage.prompt_tokens + EXCLUDED.prompt_tokens,
	completion_tokens = llm_usage.completion_tokens + EXCLUDED.completion_tokens,
	request_count = llm_usage.request_count + 1,
	updated_at = now()`

func incrementLLMUsageQuery(organizationID, provider, model, task string, promptTokens, completionTokens int) (string, []any, error) {
	return psql.Insert(tableLLMUsage).
		Columns("date", "organization_id", "provider", "model", "task", "prompt_tokens", "completion_tokens", "request_count").
		Values(sq.Expr("CURRENT_DATE"), organizationID, strings.ToLower(provider), model, task,
			safeIntToInt32(promptTokens), safeIntToInt32(completionTokens), 1).
		Suffix(llmUsageUpsertSuffix).
		ToSql()
}

// IncrementLLMUsage adds one call and its tokens to today's usage row of the
// organization, provider, model and task.
func (db *DB) IncrementLLMUsage(ctx context.Context, organizationID, provider, model, task string, promptTokens, completionTokens int) error {
	orgID, ok := canonicalID(organizationID)
	if !ok {
		return fmt.Errorf("increment llm usage: invalid organization id %q", organizationID)
	}

	query, args, err := incrementLLMUsageQuery(orgID, provider, model, task, promptTokens, completionTokens)
	if err != nil {
		return fmt.Errorf("build llm usage upsert: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment llm usage: %w", err)
	}

	return nil
}
