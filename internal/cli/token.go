package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"docchat-relay/internal/pkg/jwtutil"
)

var (
	tokenSecret  string
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a relay started with JWT_SECRET",
	Long: `Mint an HS256 bearer token. The secret must match the relay's JWT_SECRET.

Examples:
  JWT_SECRET=... docchat token --subject kiosk-1 --ttl 720h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (default $JWT_SECRET)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "docchat-cli", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	secret := tokenSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return errors.New("no secret: pass --secret or set JWT_SECRET")
	}

	signed, err := jwtutil.GenerateToken(secret, tokenTTL, tokenSubject)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
