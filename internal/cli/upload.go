package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var uploadShowResponse bool

// the ingestion workflow parses these; anything else is still forwarded
var supportedExtensions = map[string]bool{".txt": true, ".pdf": true, ".docx": true}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload documents for indexing",
	Long: `Upload one or more documents. Each file is sent as-is; the ingestion
workflow behind the relay handles .txt, .pdf and .docx.

Examples:
  docchat upload handbook.pdf
  docchat upload notes/*.txt --show-response`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadShowResponse, "show-response", false, "print the workflow's response")
}

func runUpload(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var failed []string
	for _, path := range args {
		name := filepath.Base(path)
		if !supportedExtensions[strings.ToLower(filepath.Ext(name))] {
			logger.Warn("file type may not be indexed", "file", name)
		}

		res, err := apiClient.UploadFile(cmd.Context(), path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
			failed = append(failed, name)
			continue
		}
		fmt.Fprintf(out, "Uploaded %s\n", name)
		if uploadShowResponse {
			fmt.Fprintf(out, "  %s\n", res.Upstream)
		}
	}

	if len(failed) > 0 {
		return errors.New("failed to upload: " + strings.Join(failed, ", "))
	}
	return nil
}
