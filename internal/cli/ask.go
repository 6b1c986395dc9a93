package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Ask one question against the indexed documents and print the answer.

Examples:
  docchat ask "What does the onboarding guide say about laptops?"
  docchat ask how many vacation days do I get`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is empty")
	}

	answer, err := apiClient.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
