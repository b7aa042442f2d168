package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your PDS",
		Long: `Sign in with a handle or email and an app password. The session tokens are
stored in the config file. When the account lives on another PDS the stored
server is updated from the DID document.

Example:
  skylex login --identifier alice.bsky.social --password xxxx-xxxx-xxxx-xxxx`,
		RunE: runLogin,
	}

	cmd.Flags().String("identifier", "", "Handle, DID or email of the account")
	cmd.Flags().String("password", "", "App password")
	cmd.Flags().String("auth-factor-token", "", "Token sent by email when two-factor sign-in is enabled")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return errors.New("no configuration loaded")
	}

	identifier, _ := cmd.Flags().GetString("identifier")
	password, _ := cmd.Flags().GetString("password")
	authFactor, _ := cmd.Flags().GetString("auth-factor-token")
	if identifier == "" || password == "" {
		return errors.New("both --identifier and --password are required")
	}

	c, err := newXRPCClient()
	if err != nil {
		return err
	}
	session, err := login(cmd.Context(), cfg, c, &comatproto.ServerCreateSession_Input{
		Identifier:      identifier,
		Password:        password,
		AuthFactorToken: authFactor,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	exp, hasExp := cfg.TokenExpiry()
	if jsonOutput {
		kv := map[string]any{
			"status": "success",
			"handle": session.Handle,
			"did":    session.Did,
			"server": cfg.Server,
		}
		if hasExp {
			kv["expires_at"] = exp.Format(time.RFC3339)
		}
		printJSON(kv)
	} else {
		okLabel.Fprintln(out, "✓ Login successful")
		printField("Handle", session.Handle)
		printField("DID", session.Did)
		printField("Server", cfg.Server)
		if hasExp {
			printField("Token expires at", exp.Local().Format(time.RFC3339))
		}
	}
	return nil
}

// login creates a session and stores it in cfg.
func login(ctx context.Context, cfg *Config, c *xrpc.Client, input *comatproto.ServerCreateSession_Input) (*comatproto.ServerCreateSession_Output, error) {
	session, err := comatproto.ServerCreateSession(ctx, c, input)
	if err != nil {
		return nil, err
	}

	cfg.Handle = session.Handle
	cfg.Did = session.Did
	cfg.AccessJwt = session.AccessJwt
	cfg.RefreshJwt = session.RefreshJwt
	if pds := comatproto.ServiceEndpointFromDIDDoc(session.DidDoc); pds != "" {
		cfg.Server = MorphServer(pds)
	}
	return session, nil
}
