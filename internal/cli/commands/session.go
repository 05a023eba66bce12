package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/cli/credentials"
	"github.com/tenantgate/tenantgate/internal/sessions"
)

// issueOptions describes the principal a development session is minted for
type issueOptions struct {
	TenantID  int64
	UserID    int64
	Principal string
	TTL       time.Duration
}

// NewSessionCmd creates the session command group
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Mint and revoke development sessions",
	}

	cmd.AddCommand(newSessionIssueCmd())
	cmd.AddCommand(newSessionRevokeCmd())
	return cmd
}

func newSessionIssueCmd() *cobra.Command {
	var (
		opts      issueOptions
		save      bool
		serverURL string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Write a session vault to Redis and print its id",
		Example: `  tenantgate session issue --tenant 1 --user 2
  tenantgate session issue --tenant 1 --type tenant --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			if opts.TTL == 0 {
				opts.TTL = cfg.Auth.SessionTTL
			}

			store, closeStore, err := openSessionStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			issuer := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
			sessionID, err := issueSession(cmd.Context(), store, issuer, opts)
			if err != nil {
				return err
			}

			if save {
				if serverURL == "" {
					serverURL = defaultServerURL(cfg)
				}
				if err := credentials.Default.SaveSession(serverURL, sessionID); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), sessionID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.TenantID, "tenant", 0, "Tenant id (required)")
	cmd.Flags().Int64Var(&opts.UserID, "user", 0, "User id (required for --type user)")
	cmd.Flags().StringVar(&opts.Principal, "type", auth.PrincipalUser, "Principal type: user or tenant")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "Session lifetime (defaults to SESSION_TTL)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the session id in the OS keyring")
	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL the saved session is for")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

// issueSession mints an access token for the principal and stores its vault under a fresh id
func issueSession(ctx context.Context, store sessions.Store, issuer *auth.JWTService, opts issueOptions) (string, error) {
	if opts.TenantID <= 0 {
		return "", fmt.Errorf("--tenant must be a positive id")
	}

	vault := &auth.Vault{
		TenantID: auth.IDOf(opts.TenantID),
		Type:     opts.Principal,
	}
	tenantID := opts.TenantID
	var userID *int64

	switch opts.Principal {
	case auth.PrincipalUser:
		if opts.UserID <= 0 {
			return "", fmt.Errorf("--user is required for user sessions")
		}
		userID = &opts.UserID
		vault.UserID = auth.IDOf(opts.UserID)
	case auth.PrincipalTenant:
		vault.Role = auth.RoleTenant
	default:
		return "", fmt.Errorf("unknown principal type %q (want user or tenant)", opts.Principal)
	}

	token, err := issuer.GenerateAccessToken(&tenantID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	vault.AccessToken = token

	data, err := vault.Encode()
	if err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	if err := store.Set(ctx, sessionID, data, opts.TTL); err != nil {
		return "", err
	}
	return sessionID, nil
}

func newSessionRevokeCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "revoke [session-id]",
		Short: "Delete a session (defaults to the saved one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = defaultServerURL(cfg)
			}

			var sessionID string
			fromKeyring := len(args) == 0
			if fromKeyring {
				sessionID, err = credentials.Default.LoadSession(serverURL)
				if err != nil {
					return err
				}
			} else {
				sessionID = args[0]
			}

			store, closeStore, err := openSessionStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Delete(cmd.Context(), sessionID); err != nil {
				return err
			}
			if fromKeyring {
				if err := credentials.Default.DeleteSession(serverURL); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Session %s revoked\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL the saved session is for")
	return cmd
}
