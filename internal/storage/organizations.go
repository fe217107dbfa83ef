package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

func organizationForUserQuery(userID string) (string, []any, error) {
	return psql.Select("organization_id").
		From(tableOrganizationMembers).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at").
		Limit(1).
		ToSql()
}

// OrganizationForUser returns the organization the user belongs to. A user
// in several organizations resolves to the oldest membership.
func (db *DB) OrganizationForUser(ctx context.Context, userID string) (string, error) {
	id, ok := canonicalID(userID)
	if !ok {
		return "", fmt.Errorf("%w: invalid user id %q", apperrors.ErrOrganizationNotFound, userID)
	}

	query, args, err := organizationForUserQuery(id)
	if err != nil {
		return "", fmt.Errorf("build organization lookup: %w", err)
	}

	var orgID pgtype.UUID

	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&orgID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: user %s", apperrors.ErrOrganizationNotFound, userID)
		}

		return "", fmt.Errorf("get organization for user: %w", err)
	}

	return fromUUID(orgID), nil
}
