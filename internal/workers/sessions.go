package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/sessions"
	"github.com/tenantgate/tenantgate/internal/tasks"
)

const deleteBatchSize = 100

// SessionJanitor removes session vaults that can no longer authenticate
type SessionJanitor struct {
	store    sessions.Store
	verifier auth.TokenVerifier
	logger   zerolog.Logger
}

// NewSessionJanitor creates a janitor over a session store
func NewSessionJanitor(store sessions.Store, verifier auth.TokenVerifier, logger zerolog.Logger) *SessionJanitor {
	return &SessionJanitor{
		store:    store,
		verifier: verifier,
		logger:   logger.With().Str("component", "session_janitor").Logger(),
	}
}

// Sweep deletes vaults that fail to decode or whose access token no longer verifies.
// Returns the number of deleted sessions.
func (j *SessionJanitor) Sweep(ctx context.Context) (int, error) {
	var dead []string

	err := j.store.Scan(ctx, func(sessionID string, blob []byte) error {
		vault, err := auth.DecodeVault(blob)
		if err != nil {
			dead = append(dead, sessionID)
			return nil
		}
		if _, err := j.verifier.ValidateToken(vault.AccessToken); err != nil {
			dead = append(dead, sessionID)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}

	if err := j.deleteAll(ctx, dead); err != nil {
		return 0, err
	}
	return len(dead), nil
}

// PurgeUser deletes every session belonging to a user of a tenant
func (j *SessionJanitor) PurgeUser(ctx context.Context, tenantID, userID int64) (int, error) {
	var owned []string

	err := j.store.Scan(ctx, func(sessionID string, blob []byte) error {
		vault, err := auth.DecodeVault(blob)
		if err != nil {
			return nil
		}
		if ownsSession(vault, tenantID, userID) {
			owned = append(owned, sessionID)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}

	if err := j.deleteAll(ctx, owned); err != nil {
		return 0, err
	}
	return len(owned), nil
}

// ownsSession matches a user vault by user id. The tenant is compared only
// when the vault records one; token claims are not consulted since the
// token may already be expired.
func ownsSession(vault *auth.Vault, tenantID, userID int64) bool {
	id, err := auth.DeriveUserID(vault)
	if err != nil || id == nil || *id != userID {
		return false
	}
	if vault.TenantID.IsZero() {
		return true
	}
	vaultTenant, err := vault.TenantID.Int64()
	return err == nil && vaultTenant == tenantID
}

func (j *SessionJanitor) deleteAll(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		if err := j.store.Delete(ctx, ids[start:end]...); err != nil {
			return err
		}
	}
	return nil
}

// HandleSweepSessions processes a sweep task
func HandleSweepSessions(ctx context.Context, t *asynq.Task, janitor *SessionJanitor, logger zerolog.Logger) error {
	deleted, err := janitor.Sweep(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Session sweep failed")
		return err
	}

	logger.Info().Int("deleted", deleted).Msg("Session sweep completed")
	return nil
}

// HandlePurgeUserSessions processes a purge task for a deleted user
func HandlePurgeUserSessions(ctx context.Context, t *asynq.Task, janitor *SessionJanitor, logger zerolog.Logger) error {
	payload, err := tasks.ParsePurgePayload(t)
	if err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	deleted, err := janitor.PurgeUser(ctx, payload.TenantID, payload.UserID)
	if err != nil {
		logger.Error().
			Err(err).
			Int64("tenant_id", payload.TenantID).
			Int64("user_id", payload.UserID).
			Msg("Session purge failed")
		return err
	}

	logger.Info().
		Int64("tenant_id", payload.TenantID).
		Int64("user_id", payload.UserID).
		Int("deleted", deleted).
		Msg("User sessions purged")
	return nil
}
