package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tenantgate/tenantgate/internal/sessions"
)

// Resolver turns a session id into an authenticated identity.
//
// Every entry point reopens the vault and re-verifies its access token, so
// a vault whose token has expired is rejected even while the session key
// still exists.
type Resolver struct {
	store    sessions.Store
	verifier TokenVerifier
	logger   zerolog.Logger
}

// NewResolver creates a resolver over a session store and token verifier
func NewResolver(store sessions.Store, verifier TokenVerifier, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		verifier: verifier,
		logger:   logger.With().Str("component", "auth_resolver").Logger(),
	}
}

// Open loads the vault for sessionID and verifies its access token.
// Store failures other than a missing key are returned unwrapped so callers
// can tell an outage apart from a bad session.
func (r *Resolver) Open(ctx context.Context, sessionID string) (*Vault, *Claims, error) {
	blob, err := r.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) || errors.Is(err, sessions.ErrEmptySession) {
			return nil, nil, wrap(ErrInvalidSession, err)
		}
		return nil, nil, err
	}

	vault, err := DecodeVault(blob)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Undecodable session vault")
		return nil, nil, wrap(ErrInvalidSessionData, err)
	}

	claims, err := r.verifier.ValidateToken(vault.AccessToken)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Vault access token rejected")
		return nil, nil, wrap(ErrSessionExpired, err)
	}

	if claims.Type != TokenTypeAccess {
		return nil, nil, ErrInvalidTokenType
	}

	return vault, claims, nil
}

// UserID resolves only the user id; tenant principals have none
func (r *Resolver) UserID(ctx context.Context, sessionID string) (int64, error) {
	vault, _, err := r.Open(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	userID, err := DeriveUserID(vault)
	if err != nil {
		return 0, err
	}
	if userID == nil {
		return 0, ErrUserIDNotFound
	}
	return *userID, nil
}

// TenantID resolves only the tenant id
func (r *Resolver) TenantID(ctx context.Context, sessionID string) (int64, error) {
	vault, claims, err := r.Open(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return DeriveTenantID(vault, claims)
}

// Context resolves tenant and optional user together
func (r *Resolver) Context(ctx context.Context, sessionID string) (*Context, error) {
	vault, claims, err := r.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tenantID, err := DeriveTenantID(vault, claims)
	if err != nil {
		return nil, err
	}

	userID, err := DeriveUserID(vault)
	if err != nil {
		return nil, err
	}

	return &Context{TenantID: tenantID, UserID: userID}, nil
}

// ContextFromHeader parses an Authorization header and resolves it.
// Header failures return before the store is consulted.
func (r *Resolver) ContextFromHeader(ctx context.Context, header string) (*Context, error) {
	sessionID, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return r.Context(ctx, sessionID)
}

// DeriveUserID returns the vault's user id when the principal is a user.
// A user vault without user_id yields nil.
func DeriveUserID(v *Vault) (*int64, error) {
	if v.Type != PrincipalUser || v.UserID.IsZero() {
		return nil, nil
	}
	id, err := v.UserID.Int64()
	if err != nil {
		return nil, wrap(ErrInvalidUserIDFormat, err)
	}
	return &id, nil
}

// tenantSource yields a candidate tenant id, or an unset RawID
type tenantSource func(v *Vault, c *Claims) RawID

// tenantSources is evaluated in order; the first set id wins
var tenantSources = []tenantSource{
	vaultTenantID,
	claimsTenantID,
	tenantPrincipalID,
}

func vaultTenantID(v *Vault, _ *Claims) RawID {
	return v.TenantID
}

func claimsTenantID(_ *Vault, c *Claims) RawID {
	if c == nil {
		return RawID{}
	}
	return c.TenantID
}

// tenantPrincipalID covers vaults where the principal is the tenant itself
func tenantPrincipalID(v *Vault, _ *Claims) RawID {
	if !v.IsTenantPrincipal() {
		return RawID{}
	}
	return v.UserID
}

// DeriveTenantID applies the tenant fallback chain
func DeriveTenantID(v *Vault, c *Claims) (int64, error) {
	for _, source := range tenantSources {
		raw := source(v, c)
		if raw.IsZero() {
			continue
		}
		id, err := raw.Int64()
		if err != nil {
			return 0, wrap(ErrInvalidTenantIDFormat, err)
		}
		return id, nil
	}
	return 0, ErrTenantIDNotFound
}
