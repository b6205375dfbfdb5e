package cli

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driving/inbox"
)

var (
	watchOwner    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process every syllabus dropped into a directory",
	Long: `Watches a directory and runs "process" on each .txt or .md file that is
created or changed. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOwner, "owner", "o", "", "uploading user ID")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", inbox.DefaultDebounce, "quiet period before a file is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if matchingService == nil {
		return errors.New("matching service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	w := inbox.NewWatcher(matchingService, watchOwner).WithDebounce(watchDebounce)
	results := make(chan inbox.Result)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx, args[0], results) }()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for {
		select {
		case err := <-errCh:
			return err
		case res := <-results:
			name := filepath.Base(res.Path)
			if res.Err != nil {
				cmd.PrintErrf("%s: %v\n", name, res.Err)
				continue
			}
			d := res.Result.Decision
			if d.BestMatch != nil {
				cmd.Printf("%s: %s -> %s\n", name, d.Recommendation, describeCandidate(*d.BestMatch))
			} else {
				cmd.Printf("%s: %s\n", name, d.Recommendation)
			}
		}
	}
}
