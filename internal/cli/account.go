package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	"github.com/skylex-dev/skylex/pkg/lexicon/comatproto"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Manage the account email",
	Long: `Manage the account email.

Changing a confirmed email is a two step flow:
  skylex email request-update
  skylex email update new@example.com --token TOKEN_FROM_EMAIL`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var emailUpdateCmd = &cobra.Command{
	Use:   "update EMAIL",
	Short: "Change the account email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		input := &comatproto.ServerUpdateEmail_Input{Email: args[0]}
		input.Token, _ = cmd.Flags().GetString("token")
		if cmd.Flags().Changed("auth-factor") {
			v, _ := cmd.Flags().GetBool("auth-factor")
			input.EmailAuthFactor = &v
		}
		if err := comatproto.ServerUpdateEmail(cmd.Context(), c, input); err != nil {
			return err
		}
		printDone("Email updated")
		return nil
	},
}

var emailRequestUpdateCmd = &cobra.Command{
	Use:   "request-update",
	Short: "Ask for a token to change the account email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		res, err := comatproto.ServerRequestEmailUpdate(cmd.Context(), c)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			if res.TokenRequired {
				okLabel.Fprintln(out, "✓ A token was sent to your current email")
			} else {
				okLabel.Fprintln(out, "✓ No token is needed; run \"skylex email update\"")
			}
		})
		return nil
	},
}

var emailConfirmCmd = &cobra.Command{
	Use:   "confirm EMAIL TOKEN",
	Short: "Confirm the account email",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		if err := comatproto.ServerConfirmEmail(cmd.Context(), c, &comatproto.ServerConfirmEmail_Input{Email: args[0], Token: args[1]}); err != nil {
			return err
		}
		printDone("Email confirmed")
		return nil
	},
}

var emailRequestConfirmationCmd = &cobra.Command{
	Use:   "request-confirmation",
	Short: "Ask for an email confirmation token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		if err := comatproto.ServerRequestEmailConfirmation(cmd.Context(), c); err != nil {
			return err
		}
		printDone("Confirmation email sent")
		return nil
	},
}

func printDone(msg string) {
	if jsonOutput {
		printJSON(map[string]any{"result": 1, "message": msg})
		return
	}
	okLabel.Fprintf(out, "✓ %s\n", msg)
}

var blobCmd = &cobra.Command{
	Use:   "blob",
	Short: "Upload blobs",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var errBlobTooLarge = errors.New("blob exceeds max_blob_size")

var blobUploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a file as a blob",
	Long: `Upload a file to your PDS. The content type is detected from the file
unless --type is given. Files larger than max_blob_size (1MB by default) are
refused before upload.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", args[0], err)
		}
		if err := checkBlobSize(GetConfig(), len(data)); err != nil {
			return err
		}
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		mimeType, _ := cmd.Flags().GetString("type")
		res, err := comatproto.RepoUploadBlob(cmd.Context(), c, data, mimeType)
		if err != nil {
			return err
		}
		printOutput(res, func() {
			okLabel.Fprintln(out, "✓ Blob uploaded")
			printField("CID", res.Blob.Ref.Link)
			printField("Type", res.Blob.MimeType)
			printField("Size", datasize.ByteSize(res.Blob.Size).HumanReadable())
		})
		return nil
	},
}

func checkBlobSize(cfg *Config, size int) error {
	limit, err := cfg.MaxBlobBytes()
	if err != nil {
		return err
	}
	if uint64(size) > limit {
		return fmt.Errorf("%w: %s > %s", errBlobTooLarge,
			datasize.ByteSize(size).HumanReadable(), datasize.ByteSize(limit).HumanReadable())
	}
	return nil
}

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Export repositories",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var repoExportCmd = &cobra.Command{
	Use:   "export DID",
	Short: "Download a repository as a CAR file",
	Long: `Download a repository as a CAR file, to --out or stdout. --since limits the
export to commits after the given revision.

Example:
  skylex repo export did:plc:abc123 --out repo.car`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newXRPCClient()
		if err != nil {
			return err
		}
		since, _ := cmd.Flags().GetString("since")
		data, err := comatproto.SyncGetRepo(cmd.Context(), c, args[0], since)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("out")
		return writeOutput(file, data)
	},
}

func init() {
	emailUpdateCmd.Flags().String("token", "", "Token from \"skylex email request-update\"")
	emailUpdateCmd.Flags().Bool("auth-factor", false, "Require an emailed code at sign-in")
	emailCmd.AddCommand(emailUpdateCmd, emailRequestUpdateCmd, emailConfirmCmd, emailRequestConfirmationCmd)

	blobUploadCmd.Flags().String("type", "", "Content type; detected when unset")
	blobCmd.AddCommand(blobUploadCmd)

	repoExportCmd.Flags().StringP("out", "o", "", "File to write; stdout when unset")
	repoExportCmd.Flags().String("since", "", "Only commits after this revision")
	repoCmd.AddCommand(repoExportCmd)

	rootCmd.AddCommand(emailCmd, blobCmd, repoCmd)
}
