package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/internal/versions"
	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

// StatusResponse is what "skylex status" reports.
type StatusResponse struct {
	Server    string                              `json:"server"`
	Session   *comatproto.ServerGetSession_Output `json:"session"`
	ExpiresAt string                              `json:"expiresAt,omitempty"`
	ExpiresIn string                              `json:"expiresIn,omitempty"`
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed in account and when its token expires",
	Long: `Show the signed in account as the PDS sees it, and when the access token
expires.

Examples:
  skylex status
  skylex status -j`,
	RunE: getStatus,
}

// getStatus handles retrieving session information
func getStatus(cmd *cobra.Command, args []string) error {
	c, err := newXRPCClient()
	if err != nil {
		return err
	}

	status, err := fetchStatus(cmd.Context(), GetConfig(), c)
	if err != nil {
		if jsonOutput {
			printJSON(map[string]string{
				"version_cli": versions.Version,
				"error":       err.Error(),
			})
		} else {
			fmt.Fprintf(out, "skylex %s\n", versions.Version)
			errorLabel.Fprintf(out, "Error: %v\n", err)
		}
		return ErrAlreadyHandled
	}

	if jsonOutput {
		printJSON(map[string]any{
			"result":      1,
			"version_cli": versions.Version,
			"value":       status,
		})
		return nil
	}
	fmt.Fprintf(out, "skylex %s\n", versions.Version)
	printStatusPretty(status)
	return nil
}

func fetchStatus(ctx context.Context, cfg *Config, c *xrpc.Client) (*StatusResponse, error) {
	session, err := comatproto.ServerGetSession(ctx, c)
	if err != nil {
		return nil, err
	}

	status := &StatusResponse{
		Server:  cfg.Server,
		Session: session,
	}
	if exp, ok := cfg.TokenExpiry(); ok {
		status.ExpiresAt = exp.Format(time.RFC3339)
		status.ExpiresIn = humanDuration(exp.Sub(timeNow()))
	}
	return status, nil
}

// humanDuration renders d like "1 hour 59 minutes", or "expired".
func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

// printStatusPretty prints the status information in a human-readable format
func printStatusPretty(status *StatusResponse) {
	s := status.Session
	printField("Server", status.Server)
	printField("Handle", s.Handle)
	printField("DID", s.Did)
	printField("Email", s.Email)
	if s.EmailConfirmed != nil {
		printField("Email confirmed", fmt.Sprint(*s.EmailConfirmed))
	}
	if s.EmailAuthFactor != nil {
		printField("Email sign-in code", fmt.Sprint(*s.EmailAuthFactor))
	}
	if s.Active != nil && !*s.Active {
		printField("Account status", s.Status)
	}
	printField("Token expires in", status.ExpiresIn)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
