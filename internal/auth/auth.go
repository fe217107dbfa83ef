// Package auth resolves the caller's session from a Supabase-style access
// token and maps the user to an organization.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

const bearerPrefix = "bearer "

// OrganizationLookup maps a user to the organization it belongs to.
type OrganizationLookup interface {
	OrganizationForUser(ctx context.Context, userID string) (string, error)
}

// Claims are the access token claims this service reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionAuthenticator validates HS256 access tokens signed with the project
// secret.
type SessionAuthenticator struct {
	secret []byte
	orgs   OrganizationLookup
	parser *jwt.Parser
}

// NewSessionAuthenticator creates a SessionAuthenticator.
func NewSessionAuthenticator(secret string, orgs OrganizationLookup) *SessionAuthenticator {
	return &SessionAuthenticator{
		secret: []byte(secret),
		orgs:   orgs,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Authenticate validates token and resolves the user's organization.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, fmt.Errorf("%w: missing access token", apperrors.ErrUnauthenticated)
	}

	claims := &Claims{}

	if _, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: subject is not a user id", apperrors.ErrUnauthenticated)
	}

	orgID, err := a.orgs.OrganizationForUser(ctx, userID.String())
	if err != nil {
		if errors.Is(err, apperrors.ErrOrganizationNotFound) {
			return domain.Session{}, err
		}

		return domain.Session{}, fmt.Errorf("resolving organization: %w", err)
	}

	return domain.Session{UserID: userID.String(), OrganizationID: orgID}, nil
}

// StaticAuthenticator always resolves to the same session. The CLI uses it to
// run the pipeline for a fixed organization.
type StaticAuthenticator struct {
	Session domain.Session
}

// Authenticate implements the authenticator contract, ignoring the token.
func (s StaticAuthenticator) Authenticate(context.Context, string) (domain.Session, error) {
	if s.Session.OrganizationID == "" {
		return domain.Session{}, apperrors.ErrOrganizationNotFound
	}

	return s.Session, nil
}

// BearerToken extracts the token of an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}
