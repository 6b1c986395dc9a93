package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docchat-relay/internal/model"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "ls"},
	Short:   "List indexed documents, newest first",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "print raw JSON")
}

func runDocuments(cmd *cobra.Command, args []string) error {
	docs, err := apiClient.ListDocuments(cmd.Context())
	if err != nil {
		// an unreachable relay shows as an empty list
		logger.Warn("list documents failed", "error", err)
		docs = nil
	}
	return printDocuments(cmd.OutOrStdout(), docs, documentsJSON)
}

func printDocuments(out io.Writer, docs []model.DocumentRecord, asJSON bool) error {
	if asJSON {
		if docs == nil {
			docs = []model.DocumentRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tMETADATA")
	for _, doc := range docs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", doc.ID, sourceOf(doc), compactMetadata(doc.Metadata))
	}
	return w.Flush()
}

// sourceOf picks the usual loader keys for a display name.
func sourceOf(doc model.DocumentRecord) string {
	var meta map[string]any
	if json.Unmarshal(doc.Metadata, &meta) != nil {
		return "-"
	}
	for _, key := range []string{"source", "file_name", "filename", "title"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return "-"
}

func compactMetadata(raw []byte) string {
	const limit = 80
	if len(raw) == 0 {
		return "null"
	}
	runes := []rune(string(raw))
	if len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return string(runes)
}
