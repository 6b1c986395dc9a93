package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation about your documents",
	Long: `Start an interactive conversation. Each line is sent as a question and the
answer is printed below it.

Commands inside the session:
  /history  show the conversation so far
  /reset    clear the conversation
  /exit     leave (Ctrl-D works too)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	session := NewSession(apiClient, logger)
	return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), session)
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, session *Session) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, "Ask a question about your documents. Type /exit to leave.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case "/exit", "/quit":
			return nil
		case "/reset":
			session.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/history":
			for _, msg := range session.Messages() {
				fmt.Fprintf(out, "[%s] %s\n", msg.Role, msg.Content)
			}
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		reply, ok := session.Send(ctx, line)
		if !ok {
			continue
		}
		fmt.Fprintln(out, reply.Content)
	}
}
