package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	corpusLimit int
	corpusJSON  bool
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect stored course signatures",
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent signatures",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

func init() {
	corpusListCmd.Flags().IntVarP(&corpusLimit, "limit", "n", 20, "maximum number of signatures")
	corpusListCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	corpusCmd.AddCommand(corpusListCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	sigs, err := corpusService.Recent(cmd.Context(), corpusLimit)
	if err != nil {
		return fmt.Errorf("listing corpus: %w", err)
	}

	if corpusJSON {
		return printJSON(cmd, sigs)
	}
	if len(sigs) == 0 {
		cmd.Println("Corpus is empty.")
		return nil
	}

	for _, s := range sigs {
		cmd.Printf("%s  %s  %s\n", s.CreatedAt.Format("2006-01-02 15:04"), s.ID, s.SignatureText)
	}
	return nil
}
